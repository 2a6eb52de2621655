// package models defines the data model for the playlist ETL pipeline
package models

import (
	"context"
	"time"
)

// Model defines the base interface for all persistent models in the pipeline.
type Model interface {
	Key() string     // Key returns the unique identifier for this model
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model into the database
	Get(ctx context.Context, id string) (T, error)                  // Get retrieves a model by its ID
	Update(ctx context.Context, model T) error                      // Update modifies an existing model in the database
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Date is a calendar date without a time-of-day component.
//
// A nil *Date marks a value that could not be normalized.
type Date struct {
	time.Time
}

// NewDate truncates t to midnight UTC of its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String formats the date as yyyy-MM-dd.
func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// Days returns the number of days since the Unix epoch.
func (d Date) Days() int32 {
	return int32(d.Unix() / 86400)
}

// DateFromDays is the inverse of [Date.Days].
func DateFromDays(days int32) Date {
	return Date{time.Unix(int64(days)*86400, 0).UTC()}
}
