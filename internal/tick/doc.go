// Package tick implements the background price generators.
//
// Each product gets one Generator:
//   - Appends a new price record to the product's series at a fixed cadence
//   - Moves the price by a bounded uniform random step each tick
//   - Clamps the price at a configured minimum; it never goes non-positive
//   - Runs until its context is cancelled or Stop is called
//
// Generators do not synchronize with each other or with readers; each
// series has exactly one writer.
package tick
