package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/shared"
)

// LeaseRepository grants expiring, exclusive ownership of named resources.
type LeaseRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewLeaseRepository creates a new LeaseRepository with the given database connection
func NewLeaseRepository(db *sql.DB) *LeaseRepository {
	return &LeaseRepository{db: db, now: time.Now}
}

// Acquire takes the lease on resource for owner until ttl from now.
//
// It succeeds when the resource is free, the current lease has expired, or owner already holds it (which extends it).
// Otherwise it returns [shared.ErrLeaseHeld].
func (r *LeaseRepository) Acquire(ctx context.Context, resource, owner string, ttl time.Duration) (*models.Lease, error) {
	now := r.now()
	lease := &models.Lease{
		Resource:   resource,
		Owner:      owner,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := lease.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO leases (resource, owner, acquired_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(resource) DO UPDATE
		SET owner = excluded.owner, acquired_at = excluded.acquired_at, expires_at = excluded.expires_at
		WHERE leases.expires_at <= ? OR leases.owner = excluded.owner
	`

	result, err := r.db.ExecContext(ctx, query,
		resource, owner, now.UnixMilli(), lease.ExpiresAt.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lease: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		holder, err := r.Get(ctx, resource)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", shared.ErrLeaseHeld, resource)
		}
		return nil, fmt.Errorf("%w: %s held by %s until %s",
			shared.ErrLeaseHeld, resource, holder.Owner, holder.ExpiresAt.Format(time.RFC3339))
	}

	return lease, nil
}

// Release drops owner's lease on resource. Releasing a lease that is not held by owner is a no-op.
func (r *LeaseRepository) Release(ctx context.Context, resource, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM leases WHERE resource = ? AND owner = ?`, resource, owner)
	if err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}

// Get returns the current lease record for resource, expired or not.
func (r *LeaseRepository) Get(ctx context.Context, resource string) (*models.Lease, error) {
	var (
		lease      models.Lease
		acquiredAt int64
		expiresAt  int64
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT resource, owner, acquired_at, expires_at FROM leases WHERE resource = ?`, resource,
	).Scan(&lease.Resource, &lease.Owner, &acquiredAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lease not found: %s", resource)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lease: %w", err)
	}

	lease.AcquiredAt = time.UnixMilli(acquiredAt)
	lease.ExpiresAt = time.UnixMilli(expiresAt)
	return &lease, nil
}
