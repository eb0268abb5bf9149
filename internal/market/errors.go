package market

import (
	"errors"

	"github.com/projectstockmarket/stockmarket/internal/series"
)

var (
	// ErrProductNotFound is returned when a product id is not in the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrOutOfStock is returned when a buy exceeds the available stock.
	// The stock level is left untouched.
	ErrOutOfStock = errors.New("out of stock")

	// ErrInvalidAmount is returned when a buy or sell amount is below 1.
	ErrInvalidAmount = errors.New("amount must be at least 1")

	// ErrInvalidRange is the series windowed-query error, re-exported so
	// callers of Records don't need to import the series package.
	ErrInvalidRange = series.ErrInvalidRange
)
