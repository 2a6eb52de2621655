// Package repositories implements SQLite persistence for job bookkeeping.
//
// Key Implementations:
//   - [JobRunRepository] : Job run history with status and outcome counts
//   - [LeaseRepository] : Expiring ownership records over storage prefixes
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Timestamps are stored as unix integers: seconds for job runs, milliseconds for leases.
package repositories
