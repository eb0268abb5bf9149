// Package storage persists price records to PostgreSQL.
//
// A Writer consumes tick events, accumulates rows and flushes them in
// batches, either when the batch is full or on a timer. Inserts are
// append-only with ON CONFLICT DO NOTHING, so replaying the same tick
// twice is harmless. LoadRecent reads history back out to warm the
// in-memory series after a restart.
package storage
