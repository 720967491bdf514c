package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps deals in process memory. Used by tests and as a
// fallback when no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	deals    map[uuid.UUID]Deal
	messages map[uuid.UUID][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deals:    make(map[uuid.UUID]Deal),
		messages: make(map[uuid.UUID][]Message),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateDeal(ctx context.Context, deal *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals[deal.ID] = *deal
	return nil
}

func (s *MemoryStore) GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deal, ok := s.deals[id]
	if !ok {
		return nil, ErrDealNotFound
	}
	return &deal, nil
}

func (s *MemoryStore) SaveTurn(ctx context.Context, deal *Deal, msgs ...*Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[deal.ID]; !ok {
		return ErrDealNotFound
	}
	s.deals[deal.ID] = *deal
	for _, msg := range msgs {
		s.messages[deal.ID] = append(s.messages[deal.ID], *msg)
	}
	return nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, dealID uuid.UUID) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.messages[dealID]
	msgs := make([]*Message, len(stored))
	for i := range stored {
		m := stored[i]
		msgs[i] = &m
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs, nil
}
