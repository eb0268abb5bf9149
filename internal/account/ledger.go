// Package account implements the account ledger: per-user balance and
// holdings, and the money side of buy/sell transactions. Stock levels stay
// owned by the marketplace; the ledger only coordinates with it.
package account

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

var (
	// ErrUserNotFound is returned for unknown account ids.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientFunds is returned when a buy costs more than the
	// user's balance. No mutation happens.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings is returned when a sell exceeds the user's
	// holdings of the product. No mutation happens.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrNoPrice is returned when a product has no price record yet,
	// e.g. before its first tick.
	ErrNoPrice = errors.New("no price available yet")
)

// Market is the slice of the marketplace the ledger needs.
// *market.MarketPlace satisfies it.
type Market interface {
	Buy(id, amount int) error
	Sell(id, amount int) error
	Latest(id int) (r model.PriceRecord, ok bool, err error)
}

type accountState struct {
	mu       sync.Mutex
	name     string
	balance  int
	holdings map[int]int // product id -> quantity
}

// Ledger tracks all accounts.
type Ledger struct {
	market         Market
	initialBalance int

	mu       sync.RWMutex
	accounts map[int]*accountState
}

// NewLedger creates a ledger backed by the given market.
func NewLedger(market Market, initialBalance int) *Ledger {
	return &Ledger{
		market:         market,
		initialBalance: initialBalance,
		accounts:       make(map[int]*accountState),
	}
}

// Create opens an account with the configured starting balance.
// Creating an existing id is a no-op.
func (l *Ledger) Create(userID int, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[userID]; ok {
		return
	}
	l.accounts[userID] = &accountState{
		name:     name,
		balance:  l.initialBalance,
		holdings: make(map[int]int),
	}
}

func (l *Ledger) account(userID int) (*accountState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	return a, nil
}

// Get returns a snapshot of the account.
func (l *Ledger) Get(userID int) (model.User, error) {
	a, err := l.account(userID)
	if err != nil {
		return model.User{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	inv := make([]model.InventoryItem, 0, len(a.holdings))
	for id, q := range a.holdings {
		if q > 0 {
			inv = append(inv, model.InventoryItem{ProductID: id, Quantity: q})
		}
	}
	return model.User{ID: userID, Name: a.name, Balance: a.balance, Inventory: inv}, nil
}

// Buy purchases amount units of a product at its latest price: checks funds,
// reserves stock through the market, then settles balance and holdings.
// Market errors (unknown product, out of stock) pass through unchanged.
func (l *Ledger) Buy(userID, productID, amount int) (model.Transaction, error) {
	a, err := l.account(userID)
	if err != nil {
		return model.Transaction{}, err
	}

	price, err := l.unitPrice(productID)
	if err != nil {
		return model.Transaction{}, err
	}
	cost := price * amount

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.balance < cost {
		return model.Transaction{}, fmt.Errorf("need %d, have %d: %w", cost, a.balance, ErrInsufficientFunds)
	}
	if err := l.market.Buy(productID, amount); err != nil {
		return model.Transaction{}, err
	}

	a.balance -= cost
	a.holdings[productID] += amount

	return l.transaction(userID, productID, amount, price, model.SideBuy), nil
}

// Sell turns amount units of a holding back into money at the latest price.
func (l *Ledger) Sell(userID, productID, amount int) (model.Transaction, error) {
	a, err := l.account(userID)
	if err != nil {
		return model.Transaction{}, err
	}

	price, err := l.unitPrice(productID)
	if err != nil {
		return model.Transaction{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.holdings[productID] < amount {
		return model.Transaction{}, fmt.Errorf("want %d, hold %d: %w", amount, a.holdings[productID], ErrInsufficientHoldings)
	}
	if err := l.market.Sell(productID, amount); err != nil {
		return model.Transaction{}, err
	}

	a.holdings[productID] -= amount
	a.balance += price * amount

	return l.transaction(userID, productID, amount, price, model.SideSell), nil
}

func (l *Ledger) unitPrice(productID int) (int, error) {
	r, ok, err := l.market.Latest(productID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("product %d: %w", productID, ErrNoPrice)
	}
	return r.Price, nil
}

func (l *Ledger) transaction(userID, productID, amount, price int, side model.Side) model.Transaction {
	return model.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Amount:    amount,
		UnitPrice: price,
		Side:      side,
		At:        time.Now().UTC(),
	}
}
