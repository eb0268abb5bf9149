package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
	"github.com/projectstockmarket/stockmarket/internal/tick"
)

func testCatalog() []CatalogItem {
	return []CatalogItem{
		{ID: 1, Name: "Chocolate", Stock: 4},
		{ID: 2, Name: "Coffee", Stock: 8},
		{ID: 3, Name: "Tea", Stock: 2},
	}
}

func newTestMarket(t *testing.T) *MarketPlace {
	t.Helper()
	m, err := New(DefaultConfig(), testCatalog(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestMarketPlace_GetProduct(t *testing.T) {
	m := newTestMarket(t)

	p, err := m.GetProduct(1)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.Name != "Chocolate" {
		t.Errorf("Name = %q, want %q", p.Name, "Chocolate")
	}

	_, err = m.GetProduct(99)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestMarketPlace_ListProductsCatalogOrder(t *testing.T) {
	m := newTestMarket(t)

	got := m.ListProducts()
	want := []string{"Chocolate", "Coffee", "Tea"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Name != want[i] {
			t.Errorf("product %d = %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestMarketPlace_DuplicateCatalogID(t *testing.T) {
	_, err := New(DefaultConfig(), []CatalogItem{
		{ID: 1, Name: "A", Stock: 1},
		{ID: 1, Name: "B", Stock: 1},
	}, nil)
	if err == nil {
		t.Fatal("expected error for duplicate catalog id")
	}
}

func TestMarketPlace_BuySellScenario(t *testing.T) {
	// Chocolate starts with stock 4: buy(2) ok -> 2, buy(3) fails,
	// sell(5) ok -> 7.
	m := newTestMarket(t)

	if err := m.Buy(1, 2); err != nil {
		t.Fatalf("buy(2) failed: %v", err)
	}
	if q, _ := m.Stock(1); q != 2 {
		t.Errorf("stock = %d, want 2", q)
	}

	if err := m.Buy(1, 3); !errors.Is(err, ErrOutOfStock) {
		t.Errorf("buy(3) err = %v, want ErrOutOfStock", err)
	}
	if q, _ := m.Stock(1); q != 2 {
		t.Errorf("stock after failed buy = %d, want 2", q)
	}

	if err := m.Sell(1, 5); err != nil {
		t.Fatalf("sell(5) failed: %v", err)
	}
	if q, _ := m.Stock(1); q != 7 {
		t.Errorf("stock = %d, want 7", q)
	}
}

func TestMarketPlace_BuyInvalidAmount(t *testing.T) {
	m := newTestMarket(t)

	if err := m.Buy(1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("buy(0) err = %v, want ErrInvalidAmount", err)
	}
	if err := m.Sell(1, -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("sell(-1) err = %v, want ErrInvalidAmount", err)
	}
}

func TestMarketPlace_ConcurrentBuys(t *testing.T) {
	// 100 concurrent unit buys against stock 40: exactly 40 succeed,
	// 60 fail with ErrOutOfStock, final stock is 0.
	const callers = 100
	const stock = 40

	m, err := New(DefaultConfig(), []CatalogItem{{ID: 1, Name: "X", Stock: stock}}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, callers)
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- m.Buy(1, 1)
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var ok, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if ok != stock {
		t.Errorf("successes = %d, want %d", ok, stock)
	}
	if outOfStock != callers-stock {
		t.Errorf("out-of-stock = %d, want %d", outOfStock, callers-stock)
	}
	if q, _ := m.Stock(1); q != 0 {
		t.Errorf("final stock = %d, want 0", q)
	}
}

func TestMarketPlace_RecordsUnknownProduct(t *testing.T) {
	m := newTestMarket(t)

	_, err := m.Records(42, time.Now().Add(-time.Hour), time.Now())
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestMarketPlace_RecordsInvalidRange(t *testing.T) {
	m := newTestMarket(t)

	now := time.Now()
	_, err := m.Records(1, now, now.Add(-time.Minute))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestMarketPlace_GeneratorsProduceRecords(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tick.Interval = 5 * time.Millisecond

	m, err := New(cfg, testCatalog(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		recs, err := m.Records(2, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("Records failed: %v", err)
		}
		if len(recs) >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no records generated")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, ok, err := m.Latest(2); err != nil || !ok {
		t.Errorf("Latest = ok=%v err=%v, want data", ok, err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestMarketPlace_WarmSeedsGenerator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tick = tick.Config{Interval: 5 * time.Millisecond, MaxStep: 0, MinPrice: 1, SeedMin: 500, SeedMax: 900}

	m, err := New(cfg, []CatalogItem{{ID: 1, Name: "X", Stock: 1}}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	warm := []model.PriceRecord{
		{Timestamp: time.Now().Add(-2 * time.Second).UTC(), Price: 33},
		{Timestamp: time.Now().Add(-time.Second).UTC(), Price: 34},
	}
	if err := m.Warm(1, warm); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		r, ok, err := m.Latest(1)
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if ok && !r.Timestamp.Before(warm[1].Timestamp) && r.Price != 34 {
			t.Fatalf("post-warm price = %d, want 34 (seeded, zero step)", r.Price)
		}
		if ok && r.Timestamp.After(warm[1].Timestamp) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("generator produced no records after warm load")
		case <-time.After(5 * time.Millisecond):
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
