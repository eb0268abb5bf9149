// Package series implements the bounded, time-ordered price history kept
// for each product.
//
// A Series:
//   - Retains at most its configured capacity of records (default one hour
//     at one sample per second)
//   - Evicts the single oldest record when a new append would exceed capacity
//   - Answers inclusive windowed queries in ascending time order
//   - Is safe for one writer and many concurrent readers
package series
