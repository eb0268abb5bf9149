package tick

import (
	"context"
	"testing"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
	"github.com/projectstockmarket/stockmarket/internal/series"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Millisecond
	return cfg
}

func TestGenerator_AppendsRecords(t *testing.T) {
	s := series.New(100)
	g := New(testConfig(), 1, s, nil, nil)

	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for s.Len() < 3 {
		select {
		case <-deadline:
			t.Fatal("generator produced no records")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	recs := s.Snapshot()
	for i := 1; i < len(recs); i++ {
		if recs[i].Timestamp.Before(recs[i-1].Timestamp) {
			t.Error("timestamps out of order")
		}
	}
}

func TestGenerator_PriceNeverBelowMinimum(t *testing.T) {
	cfg := testConfig()
	cfg.SeedMin, cfg.SeedMax = 1, 2
	cfg.MaxStep = 50 // large steps force the floor to engage

	s := series.New(1000)
	g := New(cfg, 1, s, nil, nil)

	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for s.Len() < 50 {
		select {
		case <-deadline:
			t.Fatal("generator too slow")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	for _, r := range s.Snapshot() {
		if r.Price < cfg.MinPrice {
			t.Fatalf("price %d below minimum %d", r.Price, cfg.MinPrice)
		}
	}
}

func TestGenerator_WarmStartSeedsFromSeries(t *testing.T) {
	s := series.New(100)
	s.Append(model.PriceRecord{Timestamp: time.Now().UTC(), Price: 77})

	cfg := testConfig()
	cfg.MaxStep = 0 // no movement, so the seed is observable

	g := New(cfg, 1, s, nil, nil)
	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for s.Len() < 3 {
		select {
		case <-deadline:
			t.Fatal("generator produced no records")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	r, _ := s.Latest()
	if r.Price != 77 {
		t.Errorf("warm-start price = %d, want 77", r.Price)
	}
}

func TestGenerator_ColdStartSeedWithinRange(t *testing.T) {
	cfg := testConfig()
	cfg.SeedMin, cfg.SeedMax = 50, 60
	cfg.MaxStep = 0

	s := series.New(100)
	g := New(cfg, 1, s, nil, nil)

	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for s.Len() < 1 {
		select {
		case <-deadline:
			t.Fatal("generator produced no records")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	r, _ := s.Latest()
	if r.Price < 50 || r.Price > 60 {
		t.Errorf("cold-start price = %d, want within [50, 60]", r.Price)
	}
}

func TestGenerator_EmitsEvents(t *testing.T) {
	s := series.New(100)
	events := make(chan model.TickEvent, 64)
	g := New(testConfig(), 7, s, events, nil)

	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.ProductID != 7 {
			t.Errorf("ProductID = %d, want 7", ev.ProductID)
		}
		if ev.Record.Price < 1 {
			t.Errorf("event price = %d, want >= 1", ev.Record.Price)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick event received")
	}

	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestGenerator_StopViaContext(t *testing.T) {
	s := series.New(100)
	g := New(testConfig(), 1, s, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := g.Stop(stopCtx); err != nil {
		t.Fatalf("Stop after ctx cancel failed: %v", err)
	}
}
