package tasks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotlake/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/desertthunder/spotlake/internal/repositories"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/desertthunder/spotlake/internal/storage"
	tu "github.com/desertthunder/spotlake/internal/testing"
)

var testLayout = storage.Layout{
	Landing: "raw_data/to_process/",
	Archive: "raw_data/processed/",
	Output:  "transformed_data/",
}

// failingStore wraps a store and fails Delete calls while failDelete is set
type failingStore struct {
	storage.Store
	failDelete bool
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("delete failed")
	}
	return f.Store.Delete(ctx, key)
}

type mockLeaser struct {
	acquireErr error
	acquired   []string
	released   []string
}

func (m *mockLeaser) Acquire(_ context.Context, resource, owner string, ttl time.Duration) (*models.Lease, error) {
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	m.acquired = append(m.acquired, resource+"@"+owner)
	return &models.Lease{Resource: resource, Owner: owner, ExpiresAt: time.Now().Add(ttl)}, nil
}

func (m *mockLeaser) Release(_ context.Context, resource, owner string) error {
	m.released = append(m.released, resource+"@"+owner)
	return nil
}

func newTestEngine(store storage.Store, leases Leaser) *TransformEngine {
	return NewTransformEngine(store, testLayout, leases, time.Minute, shared.NewLogger(&bytes.Buffer{}))
}

func putObject(t *testing.T, store storage.Store, key string, data []byte) {
	t.Helper()
	if err := store.Put(context.Background(), key, data, "application/json"); err != nil {
		t.Fatalf("failed to put %s: %v", key, err)
	}
}

func listKeys(t *testing.T, store storage.Store, prefix string) []string {
	t.Helper()
	objects, err := store.List(context.Background(), prefix)
	if err != nil {
		t.Fatalf("failed to list %s: %v", prefix, err)
	}
	keys := make([]string, len(objects))
	for i, obj := range objects {
		keys[i] = obj.Key
	}
	return keys
}

// partKeys reads the key column of every row in a Parquet part.
func partKeys(t *testing.T, store storage.Store, key, column string) []string {
	t.Helper()
	data, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("failed to get %s: %v", key, err)
	}
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open %s: %v", key, err)
	}
	leaf, ok := f.Schema().Lookup(column)
	if !ok {
		t.Fatalf("column %s not in %s", column, key)
	}

	var keys []string
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, rg.NumRows())
		n, err := rows.ReadRows(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("failed to read %s: %v", key, err)
		}
		rows.Close()
		for _, row := range buf[:n] {
			keys = append(keys, string(row[leaf.ColumnIndex].ByteArray()))
		}
	}
	return keys
}

func TestTransformEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Single Object", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		key := testLayout.RawKey(time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))
		putObject(t, store, key, tu.PlaylistJSON)

		leases := &mockLeaser{}
		result, err := newTestEngine(store, leases).Run(ctx, "run-1", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.ObjectsRead != 1 || result.Rows != 2 {
			t.Errorf("expected 1 object and 2 rows, got %d objects and %d rows", result.ObjectsRead, result.Rows)
		}
		if result.Albums != 1 || result.Artists != 4 || result.Songs != 2 {
			t.Errorf("expected 1/4/2 rows, got %d/%d/%d", result.Albums, result.Artists, result.Songs)
		}
		if result.Archived != 1 {
			t.Errorf("expected 1 archived object, got %d", result.Archived)
		}
		if len(result.Files) != 3 {
			t.Fatalf("expected 3 part files, got %v", result.Files)
		}

		for _, ds := range storage.Datasets() {
			want := testLayout.PartKey(ds, "run-1")
			if ok, _ := store.Exists(ctx, want); !ok {
				t.Errorf("expected part %s to exist", want)
			}
		}

		if keys := listKeys(t, store, testLayout.Landing); len(keys) != 0 {
			t.Errorf("expected empty landing area, got %v", keys)
		}
		if keys := listKeys(t, store, testLayout.Archive); len(keys) != 1 || keys[0] != testLayout.ArchiveKey(key) {
			t.Errorf("expected archived %s, got %v", testLayout.ArchiveKey(key), keys)
		}

		if len(leases.acquired) != 1 || len(leases.released) != 1 {
			t.Errorf("expected one acquire and one release, got %v / %v", leases.acquired, leases.released)
		}
		if leases.acquired[0] != testLayout.Landing+"@run-1" {
			t.Errorf("expected lease on landing prefix owned by run, got %s", leases.acquired[0])
		}
	})

	t.Run("Mixed Objects", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"a.json", tu.PlaylistJSON)
		putObject(t, store, testLayout.Landing+"b.json", tu.PlaylistJSON)
		putObject(t, store, testLayout.Landing+"c.json", []byte("not json"))
		putObject(t, store, testLayout.Landing+"notes.txt", []byte("hello"))

		result, err := newTestEngine(store, nil).Run(ctx, "run-2", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.ObjectsRead != 4 {
			t.Errorf("expected 4 objects read, got %d", result.ObjectsRead)
		}
		if result.Undecodable != 2 {
			t.Errorf("expected 2 undecodable objects, got %d", result.Undecodable)
		}
		if result.Albums != 1 || result.Artists != 4 || result.Songs != 2 {
			t.Errorf("expected duplicates collapsed to 1/4/2, got %d/%d/%d", result.Albums, result.Artists, result.Songs)
		}
		if result.Archived != 3 {
			t.Errorf("expected 3 json objects archived, got %d", result.Archived)
		}

		landing := listKeys(t, store, testLayout.Landing)
		if len(landing) != 1 || landing[0] != testLayout.Landing+"notes.txt" {
			t.Errorf("expected only notes.txt left in landing, got %v", landing)
		}
		if archived := listKeys(t, store, testLayout.Archive); len(archived) != 3 {
			t.Errorf("expected 3 archived objects, got %v", archived)
		}
	})

	t.Run("Empty Landing Area", func(t *testing.T) {
		store := storage.NewMemoryStore("test")

		result, err := newTestEngine(store, nil).Run(ctx, "run-3", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ObjectsRead != 0 || len(result.Files) != 0 {
			t.Errorf("expected no-op result, got %+v", result)
		}
		if keys := listKeys(t, store, testLayout.Output); len(keys) != 0 {
			t.Errorf("expected no outputs, got %v", keys)
		}
	})

	t.Run("Only Undecodable Objects", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"bad.json", []byte("{"))

		result, err := newTestEngine(store, nil).Run(ctx, "run-4", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Files) != 0 {
			t.Errorf("expected no part files, got %v", result.Files)
		}
		if result.Archived != 1 {
			t.Errorf("expected undecodable object to be archived, got %d", result.Archived)
		}
	})

	t.Run("Lease Held", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"a.json", tu.PlaylistJSON)

		leases := &mockLeaser{acquireErr: shared.ErrLeaseHeld}
		_, err := newTestEngine(store, leases).Run(ctx, "run-5", nil)
		if !errors.Is(err, shared.ErrLeaseHeld) {
			t.Fatalf("expected ErrLeaseHeld, got %v", err)
		}
		if keys := listKeys(t, store, testLayout.Landing); len(keys) != 1 {
			t.Errorf("expected landing untouched, got %v", keys)
		}
		if keys := listKeys(t, store, testLayout.Output); len(keys) != 0 {
			t.Errorf("expected no outputs, got %v", keys)
		}
	})

	t.Run("Lease Repository", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		if err := shared.RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		leases := repositories.NewLeaseRepository(db)
		if _, err := leases.Acquire(ctx, testLayout.Landing, "other-run", time.Minute); err != nil {
			t.Fatalf("failed to acquire lease: %v", err)
		}

		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"a.json", tu.PlaylistJSON)
		engine := newTestEngine(store, leases)

		if _, err := engine.Run(ctx, "run-6", nil); !errors.Is(err, shared.ErrLeaseHeld) {
			t.Fatalf("expected ErrLeaseHeld while other run holds lease, got %v", err)
		}

		if err := leases.Release(ctx, testLayout.Landing, "other-run"); err != nil {
			t.Fatalf("failed to release lease: %v", err)
		}
		if _, err := engine.Run(ctx, "run-6", nil); err != nil {
			t.Fatalf("expected run to succeed after release, got %v", err)
		}
		if lease, err := leases.Get(ctx, testLayout.Landing); err == nil && lease != nil {
			t.Errorf("expected lease released after run, got %+v", lease)
		}
	})

	t.Run("Resume After Interrupted Archive", func(t *testing.T) {
		mem := storage.NewMemoryStore("test")
		store := &failingStore{Store: mem, failDelete: true}
		key := testLayout.Landing + "a.json"
		putObject(t, store, key, tu.PlaylistJSON)

		engine := newTestEngine(store, nil)
		if _, err := engine.Run(ctx, "run-7", nil); err == nil {
			t.Fatal("expected archive failure")
		}
		if ok, _ := mem.Exists(ctx, testLayout.ArchiveKey(key)); !ok {
			t.Fatal("expected archive copy to exist after interrupted run")
		}
		if ok, _ := mem.Exists(ctx, key); !ok {
			t.Fatal("expected landing copy to remain after interrupted run")
		}

		store.failDelete = false
		result, err := engine.Run(ctx, "run-8", nil)
		if err != nil {
			t.Fatalf("expected resumed run to succeed, got %v", err)
		}
		if result.Archived != 1 {
			t.Errorf("expected 1 archived object, got %d", result.Archived)
		}
		if keys := listKeys(t, mem, testLayout.Landing); len(keys) != 0 {
			t.Errorf("expected empty landing area, got %v", keys)
		}
		if keys := listKeys(t, mem, testLayout.Archive); len(keys) != 1 {
			t.Errorf("expected one archived object, got %v", keys)
		}
	})

	t.Run("Reprocessed Input Appends Across Runs", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		key := testLayout.Landing + "a.json"
		putObject(t, store, key, tu.PlaylistJSON)

		engine := newTestEngine(store, nil)
		if _, err := engine.Run(ctx, "run-a", nil); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := store.Copy(ctx, testLayout.ArchiveKey(key), key); err != nil {
			t.Fatalf("failed to restore raw object: %v", err)
		}
		second, err := engine.Run(ctx, "run-b", nil)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if second.Albums != 1 || second.Artists != 4 || second.Songs != 2 {
			t.Errorf("expected each run deduplicated to 1/4/2, got %d/%d/%d", second.Albums, second.Artists, second.Songs)
		}

		tests := []struct {
			ds     storage.Dataset
			column string
			want   []string
		}{
			{storage.AlbumData, "album_id", []string{"album-1"}},
			{storage.ArtistData, "artist_id", []string{"artist-1", "artist-2", "artist-3", "artist-4"}},
			{storage.SongData, "song_id", []string{"song-1", "song-2"}},
		}

		for _, tt := range tests {
			t.Run(string(tt.ds), func(t *testing.T) {
				parts := listKeys(t, store, testLayout.DatasetPrefix(tt.ds))
				if len(parts) != 2 {
					t.Fatalf("expected one part per run, got %v", parts)
				}

				var all []string
				for _, part := range parts {
					keys := partKeys(t, store, part, tt.column)
					slices.Sort(keys)
					if !slices.Equal(keys, tt.want) {
						t.Errorf("part %s: expected keys %v, got %v", part, tt.want, keys)
					}
					all = append(all, keys...)
				}
				if len(all) != 2*len(tt.want) {
					t.Errorf("expected every key twice across runs, got %v", all)
				}
			})
		}
	})

	t.Run("Local Files", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"local.json", tu.LocalTracksJSON)

		result, err := newTestEngine(store, nil).Run(ctx, "run-local", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Albums != 2 || result.Artists != 2 || result.Songs != 2 {
			t.Errorf("expected 2/2/2 rows, got %d/%d/%d", result.Albums, result.Artists, result.Songs)
		}

		data, err := store.Get(ctx, testLayout.PartKey(storage.SongData, "run-local"))
		if err != nil {
			t.Fatalf("failed to get song part: %v", err)
		}
		f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("failed to open song part: %v", err)
		}
		leaf, _ := f.Schema().Lookup("song_id")
		buf := make([]parquet.Row, f.NumRows())
		rows := f.RowGroups()[0].Rows()
		n, err := rows.ReadRows(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("failed to read song part: %v", err)
		}
		rows.Close()

		var nulls int
		for _, row := range buf[:n] {
			if row[leaf.ColumnIndex].IsNull() {
				nulls++
			}
		}
		if nulls != 1 {
			t.Errorf("expected one song with a null song_id, got %d", nulls)
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"a.json", tu.PlaylistJSON)

		progress := make(chan ProgressUpdate, 64)
		if _, err := newTestEngine(store, &mockLeaser{}).Run(ctx, "run-9", progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var phases []Phase
		var last ProgressUpdate
		for update := range progress {
			phases = append(phases, update.Phase)
			last = update
		}

		if len(phases) == 0 || phases[0] != AcquireLease {
			t.Errorf("expected first phase acquire_lease, got %v", phases)
		}
		if last.Phase != Complete {
			t.Errorf("expected final phase complete, got %s", last.Phase)
		}
		if res, ok := last.Data.(*TransformResult); !ok || res.RunID != "run-9" {
			t.Errorf("expected result data on complete update, got %#v", last.Data)
		}
		if !strings.Contains(last.Message, "2 songs") {
			t.Errorf("expected summary message, got %q", last.Message)
		}
	})

	t.Run("Job Adapter", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		putObject(t, store, testLayout.Landing+"a.json", tu.PlaylistJSON)

		run := models.NewJobRun("transform_spotify_data")
		counts, err := newTestEngine(store, nil).Job(nil)(ctx, run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := models.RunCounts{ObjectsRead: 1, AlbumsWritten: 1, ArtistsWritten: 4, SongsWritten: 2, ObjectsArchived: 1}
		if counts != want {
			t.Errorf("expected %+v, got %+v", want, counts)
		}
		if ok, _ := store.Exists(ctx, testLayout.PartKey(storage.SongData, run.ID)); !ok {
			t.Error("expected part named after run ID")
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{AcquireLease, "acquire_lease"},
		{ListObjects, "list_objects"},
		{ReadObjects, "read_objects"},
		{FlattenRows, "flatten_rows"},
		{WriteDataset, "write_dataset"},
		{ArchiveObjects, "archive_objects"},
		{Complete, "complete"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
