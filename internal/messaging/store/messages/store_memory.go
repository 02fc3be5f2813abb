// Package messages persists case threads. Append-only by construction:
// neither implementation exposes update or delete.
package messages

import (
	"context"
	"sort"
	"sync"

	"signalbox/internal/messaging/models"
	id "signalbox/pkg/domain"
)

// InMemory is a mutex-guarded append-only message store.
type InMemory struct {
	mu     sync.RWMutex
	byCase map[id.CaseID][]*models.Message
}

// NewInMemory creates an empty in-memory message store.
func NewInMemory() *InMemory {
	return &InMemory{byCase: make(map[id.CaseID][]*models.Message)}
}

// Append adds a message to its case thread.
func (s *InMemory) Append(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *m
	s.byCase[m.CaseID] = append(s.byCase[m.CaseID], &clone)
	return nil
}

// ListByCase returns a case's full thread ordered by CreatedAt ascending.
// Visibility filtering is the service's job; the store returns everything.
func (s *InMemory) ListByCase(_ context.Context, caseID id.CaseID) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byCase[caseID]
	out := make([]*models.Message, 0, len(stored))
	for _, m := range stored {
		clone := *m
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
