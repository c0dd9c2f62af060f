// Package queue persists render job records and their lifecycle state
// (queued, processing, done, error) in SQLite.
package queue
