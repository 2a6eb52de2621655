package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"job_runs", "job_runs_sequence", "leases"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM leases LIMIT 1"); err == nil {
			t.Error("leases table should be dropped by rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM job_runs LIMIT 1"); err != nil {
			t.Errorf("job_runs table should survive a single rollback: %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		for range 2 {
			if err := RunMigrations(ctx, db); err != nil {
				t.Fatalf("failed to run migrations: %v", err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("Rollback with nothing applied", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(ctx, db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error when no migrations are applied")
		}
	})
}

func TestRemoveComments(t *testing.T) {
	got := removeComments("-- heading\nCREATE TABLE t (id INTEGER) -- trailing\n\n")
	if got != "CREATE TABLE t (id INTEGER)" {
		t.Errorf("removeComments() = %q", got)
	}
}
