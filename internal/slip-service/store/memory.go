package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/radieske/fantasy-betting-league/pkg/betslip"
)

// Memory guarda boletins em processo (SLIP_STORE=memory e testes).
// Guarda JSON, como o Redis, para que ninguém segure ponteiro para o estado interno.
type Memory struct {
	mu    sync.Mutex
	slips map[string][]byte
}

func NewMemory() *Memory { return &Memory{slips: map[string][]byte{}} }

func (m *Memory) Get(_ context.Context, id string) (*betslip.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.slips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decode(b)
}

func (m *Memory) Create(_ context.Context, s *betslip.Slip) (*betslip.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.slips[s.ID]; ok {
		return decode(b)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	m.slips[s.ID] = b
	return decode(b)
}

func (m *Memory) Update(_ context.Context, id string, fn func(*betslip.Slip) error) (*betslip.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.slips[id]
	if !ok {
		return nil, ErrNotFound
	}
	s, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	nb, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	m.slips[id] = nb
	return s, nil
}
