// Package feed implements the incremental sync client.
//
// The client tracks a live price series across the engine's query boundary
// while minimizing bandwidth and avoiding duplicates:
//   - Per product it keeps a cursor (last synchronized timestamp) and a
//     bounded local buffer mirroring a suffix of the remote series
//   - The first poll requests a full window and seeds the cursor; later
//     polls request only [cursor, now]
//   - The windowed query is inclusive on both ends, so the boundary record
//     is re-delivered and dropped here
//   - At most one poll is in flight per product; a concurrent poll is
//     dropped, not queued
//   - Transient transport failures are retried through an explicit
//     retry.Policy; everything else surfaces immediately
package feed
