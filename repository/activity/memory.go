package activity

import (
	"context"
	"sort"
	"sync"

	"github.com/MANUEL666GAMER/Biblioteca/model"
)

// MemoryCapacity is how many events the in-process journal retains.
const MemoryCapacity = 500

// MemoryJournal keeps the latest events in process in a fixed ring. Used
// when ClickHouse is not configured and in tests.
type MemoryJournal struct {
	mu       sync.RWMutex
	events   []model.LoanEvent
	next     int // oldest slot once the ring is full
	capacity int
}

func NewMemoryJournal() *MemoryJournal {
	return newMemoryJournal(MemoryCapacity)
}

func newMemoryJournal(capacity int) *MemoryJournal {
	return &MemoryJournal{events: make([]model.LoanEvent, 0, capacity), capacity: capacity}
}

func (m *MemoryJournal) Initialize(ctx context.Context) error { return nil }

func (m *MemoryJournal) Record(ctx context.Context, ev model.LoanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.events) < m.capacity {
		m.events = append(m.events, ev)
		return nil
	}
	m.events[m.next] = ev
	m.next = (m.next + 1) % m.capacity
	return nil
}

func (m *MemoryJournal) Recent(ctx context.Context, limit int) ([]model.LoanEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.events)
	sorted := make([]model.LoanEvent, 0, n)
	for k := n - 1; k >= 0; k-- {
		sorted = append(sorted, m.events[(m.next+k)%n])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.After(sorted[j].At)
	})

	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (m *MemoryJournal) Close() error { return nil }
