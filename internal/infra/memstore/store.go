// Package memstore keeps principals and signed messages in process memory.
// It backs no-db mode and tests.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"signet/internal/domain"
	"signet/internal/usecase"
)

type Principals struct {
	mu      sync.RWMutex
	byID    map[string]domain.Principal
	byEmail map[string]string
	order   []string
}

func NewPrincipals() *Principals {
	return &Principals{
		byID:    make(map[string]domain.Principal),
		byEmail: make(map[string]string),
	}
}

func (s *Principals) Get(ctx context.Context, id string) (domain.Principal, bool, error) {
	if err := checkContext(ctx); err != nil {
		return domain.Principal{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok, nil
}

// Create stores principal with both keys in one step. IDs and emails are
// unique.
func (s *Principals) Create(ctx context.Context, principal domain.Principal) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if principal.ID == "" {
		return fmt.Errorf("%w: principal id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[principal.ID]; ok {
		return fmt.Errorf("%w: id %s", domain.ErrPrincipalExists, principal.ID)
	}
	if _, ok := s.byEmail[principal.Email]; ok {
		return fmt.Errorf("%w: email already registered", domain.ErrPrincipalExists)
	}
	s.byID[principal.ID] = principal
	s.byEmail[principal.Email] = principal.ID
	s.order = append(s.order, principal.ID)
	return nil
}

// ListAll returns a snapshot in insertion order.
func (s *Principals) ListAll(ctx context.Context) ([]domain.Principal, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Principal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

type Messages struct {
	mu   sync.RWMutex
	byID map[string]domain.SignedMessage
}

func NewMessages() *Messages {
	return &Messages{byID: make(map[string]domain.SignedMessage)}
}

func (s *Messages) Get(ctx context.Context, id string) (domain.SignedMessage, bool, error) {
	if err := checkContext(ctx); err != nil {
		return domain.SignedMessage{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[id]
	return msg, ok, nil
}

func (s *Messages) Create(ctx context.Context, msg domain.SignedMessage) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if msg.ID == "" {
		return fmt.Errorf("%w: message id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[msg.ID]; ok {
		return fmt.Errorf("%w: message %s already exists", domain.ErrInvalidInput, msg.ID)
	}
	s.byID[msg.ID] = msg
	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

var (
	_ usecase.PrincipalRepository = (*Principals)(nil)
	_ usecase.MessageRepository   = (*Messages)(nil)
)
