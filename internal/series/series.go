package series

import (
	"errors"
	"sync"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

// DefaultCapacity retains one hour of records at one sample per second.
const DefaultCapacity = 3600

// ErrInvalidRange is returned by Query when from is after to.
// The windowed query contract is inclusive on both ends; a reversed window
// is a caller bug, not an empty result.
var ErrInvalidRange = errors.New("invalid range: from is after to")

// Series is a fixed-capacity FIFO ring of price records.
// Timestamps are non-decreasing in insertion order because each series has
// exactly one writer.
type Series struct {
	mu       sync.RWMutex
	buf      []model.PriceRecord
	head     int // index of the oldest record
	count    int
	capacity int
}

// New creates a series with the given retention cap.
// Capacities below 1 fall back to DefaultCapacity.
func New(capacity int) *Series {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Series{
		buf:      make([]model.PriceRecord, capacity),
		capacity: capacity,
	}
}

// Append adds a record, evicting the oldest one first when the series is at
// capacity. Readers racing an append observe either the pre- or post-append
// state, never more than capacity records.
func (s *Series) Append(r model.PriceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == s.capacity {
		// Overwrite the oldest slot and advance.
		s.buf[s.head] = r
		s.head = (s.head + 1) % s.capacity
		return
	}

	s.buf[(s.head+s.count)%s.capacity] = r
	s.count++
}

// Query returns all records with from <= timestamp <= to in ascending order.
// A window containing no records yields an empty slice. A reversed window
// (from after to) yields ErrInvalidRange.
func (s *Series) Query(from, to time.Time) ([]model.PriceRecord, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PriceRecord, 0, s.count)
	for i := 0; i < s.count; i++ {
		r := s.buf[(s.head+i)%s.capacity]
		if r.Timestamp.Before(from) {
			continue
		}
		if r.Timestamp.After(to) {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

// Latest returns the most recent record. ok is false when the series is
// empty, e.g. before the first tick after process start.
func (s *Series) Latest() (r model.PriceRecord, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.count == 0 {
		return model.PriceRecord{}, false
	}
	return s.buf[(s.head+s.count-1)%s.capacity], true
}

// Len returns the number of retained records.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Cap returns the retention cap.
func (s *Series) Cap() int {
	return s.capacity
}

// Snapshot returns a copy of all retained records, oldest first.
func (s *Series) Snapshot() []model.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PriceRecord, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.buf[(s.head+i)%s.capacity]
	}
	return out
}
