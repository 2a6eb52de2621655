// Package tasks orchestrates the transform stage of the pipeline with real-time progress reporting.
//
// # Transform Run
//
// [TransformEngine.Run] performs one batch over the landing area:
//
//  1. Acquire a lease on the landing prefix so concurrent runs do not race
//  2. List and read every landing object, decoding each as a playlist record
//  3. Flatten the records once and extract albums, artists and songs from the same rows
//  4. Append one Parquet part per non-empty dataset, named after the run ID
//  5. Move every JSON object that was read into the archive area
//
// An empty landing area is a successful no-op. Objects that land while a run is in progress are left for the next run.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Job Integration
//
// [TransformEngine.Job] adapts the engine to jobs.Func so runs can be started by name and recorded.
package tasks
