package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is an entry in the market catalog. Immutable after creation.
type Product struct {
	ID   int    // Stable catalog identifier
	Name string // Display name
}

// PriceRecord is one sample of a product's price history.
type PriceRecord struct {
	Timestamp time.Time // Sample time (UTC)
	Price     int       // Price at that time
}

// TickEvent is emitted by the marketplace each time a generator appends
// a new record to a product's series.
type TickEvent struct {
	ProductID int
	Record    PriceRecord
}

// MarketItem is the current stock level of one product on the market.
type MarketItem struct {
	ProductID int
	Quantity  int
}

// InventoryItem is a holding in a user's inventory.
type InventoryItem struct {
	ProductID int
	Quantity  int
}

// User is a snapshot of an account's state.
type User struct {
	ID        int
	Name      string
	Balance   int
	Inventory []InventoryItem
}

// Transaction records one completed buy or sell.
type Transaction struct {
	ID        uuid.UUID
	UserID    int
	ProductID int
	Amount    int // Units traded
	UnitPrice int // Price per unit at execution time
	Side      Side
	At        time.Time
}

// Side distinguishes buys from sells.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)
