package account

import (
	"errors"
	"testing"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/market"
	"github.com/projectstockmarket/stockmarket/internal/model"
)

// fakeMarket is a minimal market with one product and a fixed price.
type fakeMarket struct {
	price   int
	hasTick bool
	stock   int
}

func (f *fakeMarket) Buy(id, amount int) error {
	if amount < 1 {
		return market.ErrInvalidAmount
	}
	if f.stock < amount {
		return market.ErrOutOfStock
	}
	f.stock -= amount
	return nil
}

func (f *fakeMarket) Sell(id, amount int) error {
	if amount < 1 {
		return market.ErrInvalidAmount
	}
	f.stock += amount
	return nil
}

func (f *fakeMarket) Latest(id int) (model.PriceRecord, bool, error) {
	if !f.hasTick {
		return model.PriceRecord{}, false, nil
	}
	return model.PriceRecord{Timestamp: time.Now(), Price: f.price}, true, nil
}

func TestLedger_BuySettlesBalanceAndHoldings(t *testing.T) {
	m := &fakeMarket{price: 10, hasTick: true, stock: 5}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	tx, err := l.Buy(1, 7, 3)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if tx.UnitPrice != 10 || tx.Amount != 3 || tx.Side != model.SideBuy {
		t.Errorf("tx = %+v, want 3 units at 10, side buy", tx)
	}

	u, err := l.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if u.Balance != 70 {
		t.Errorf("balance = %d, want 70", u.Balance)
	}
	if len(u.Inventory) != 1 || u.Inventory[0].Quantity != 3 {
		t.Errorf("inventory = %+v, want 3 units of product 7", u.Inventory)
	}
	if m.stock != 2 {
		t.Errorf("market stock = %d, want 2", m.stock)
	}
}

func TestLedger_BuyInsufficientFunds(t *testing.T) {
	m := &fakeMarket{price: 60, hasTick: true, stock: 5}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	_, err := l.Buy(1, 7, 2) // costs 120
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// Nothing moved.
	u, _ := l.Get(1)
	if u.Balance != 100 || len(u.Inventory) != 0 {
		t.Errorf("account mutated: %+v", u)
	}
	if m.stock != 5 {
		t.Errorf("market stock = %d, want 5", m.stock)
	}
}

func TestLedger_BuyOutOfStockPassesThrough(t *testing.T) {
	m := &fakeMarket{price: 1, hasTick: true, stock: 1}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	_, err := l.Buy(1, 7, 2)
	if !errors.Is(err, market.ErrOutOfStock) {
		t.Fatalf("err = %v, want market.ErrOutOfStock", err)
	}

	u, _ := l.Get(1)
	if u.Balance != 100 {
		t.Errorf("balance = %d, want 100 (no partial mutation)", u.Balance)
	}
}

func TestLedger_SellRequiresHoldings(t *testing.T) {
	m := &fakeMarket{price: 10, hasTick: true, stock: 5}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	_, err := l.Sell(1, 7, 1)
	if !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("err = %v, want ErrInsufficientHoldings", err)
	}
}

func TestLedger_BuyThenSellRoundTrip(t *testing.T) {
	m := &fakeMarket{price: 10, hasTick: true, stock: 5}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	if _, err := l.Buy(1, 7, 2); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if _, err := l.Sell(1, 7, 2); err != nil {
		t.Fatalf("Sell failed: %v", err)
	}

	u, _ := l.Get(1)
	if u.Balance != 100 {
		t.Errorf("balance = %d, want 100", u.Balance)
	}
	if len(u.Inventory) != 0 {
		t.Errorf("inventory = %+v, want empty", u.Inventory)
	}
	if m.stock != 5 {
		t.Errorf("market stock = %d, want 5", m.stock)
	}
}

func TestLedger_NoPriceYet(t *testing.T) {
	m := &fakeMarket{hasTick: false, stock: 5}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	_, err := l.Buy(1, 7, 1)
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("err = %v, want ErrNoPrice", err)
	}
}

func TestLedger_UnknownUser(t *testing.T) {
	l := NewLedger(&fakeMarket{hasTick: true, price: 1}, 100)

	if _, err := l.Get(9); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Get err = %v, want ErrUserNotFound", err)
	}
	if _, err := l.Buy(9, 1, 1); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Buy err = %v, want ErrUserNotFound", err)
	}
}

func TestLedger_CreateIsIdempotent(t *testing.T) {
	m := &fakeMarket{price: 10, hasTick: true, stock: 5}
	l := NewLedger(m, 100)
	l.Create(1, "alice")

	if _, err := l.Buy(1, 7, 1); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	l.Create(1, "alice") // must not reset the account

	u, _ := l.Get(1)
	if u.Balance != 90 {
		t.Errorf("balance = %d, want 90", u.Balance)
	}
}
