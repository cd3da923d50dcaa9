package store

import (
	"context"
	"sync"
	"time"

	"librarycard/internal/card"
)

// Memory is a process-lifetime store for development and tests.
type Memory struct {
	mu    sync.Mutex
	seq   int64
	cards map[string]card.StoredCard
	now   func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cards: make(map[string]card.StoredCard),
		now:   time.Now,
	}
}

// Create stores req under its enrollment number with the next sequence id.
func (m *Memory) Create(_ context.Context, req card.Request) (card.StoredCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	sc := card.StoredCard{
		ID:        m.seq,
		Request:   req,
		CreatedAt: m.now().UTC(),
	}
	m.cards[req.EnrollmentNumber] = sc
	return sc, nil
}

// GetByEnrollment returns the card stored under enrollmentNumber.
func (m *Memory) GetByEnrollment(_ context.Context, enrollmentNumber string) (card.StoredCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.cards[enrollmentNumber]
	if !ok {
		return card.StoredCard{}, ErrNotFound
	}
	return sc, nil
}

// ListAll returns every stored card in no particular order.
func (m *Memory) ListAll(_ context.Context) ([]card.StoredCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]card.StoredCard, 0, len(m.cards))
	for _, sc := range m.cards {
		out = append(out, sc)
	}
	return out, nil
}

func (m *Memory) Healthy(context.Context) bool { return true }
