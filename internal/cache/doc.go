// Package cache keeps recent quotes in Redis.
//
// Each product has a last-quote key and a time-sorted set of recent
// ticks. Entries older than the configured TTL are trimmed in the
// background so the sets stay bounded.
package cache
