// Package model defines shared data types used across the stock market engine.
//
// Conventions:
//   - Prices: integer currency units, never below 1
//   - Timestamps: time.Time in UTC
//   - IDs: int for products and users, uuid.UUID for transactions
package model
