package otp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FlowCookie names the cookie that carries a visitor's flow ID
const FlowCookie = "otp_flow"

type entry struct {
	flow     *Flow
	lastSeen time.Time
}

// Store keeps one Flow per visitor in memory. Flows idle longer than the
// idle TTL are dropped; they are UI state and are never persisted.
type Store struct {
	mu      sync.Mutex
	flows   map[string]*entry
	idleTTL time.Duration
	newFlow func(id string) *Flow
	nowF    func() time.Time
}

// NewStore returns a store that builds flows with newFlow
func NewStore(newFlow func(id string) *Flow, idleTTL time.Duration) *Store {
	return &Store{
		flows:   make(map[string]*entry),
		idleTTL: idleTTL,
		newFlow: newFlow,
		nowF:    time.Now,
	}
}

// Get returns the flow for id if present and not idle past the TTL
func (s *Store) Get(id string) (*Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.flows[id]
	if !ok {
		return nil, false
	}
	now := s.nowF()
	if s.idleTTL > 0 && now.Sub(e.lastSeen) > s.idleTTL {
		delete(s.flows, id)
		return nil, false
	}
	e.lastSeen = now
	return e.flow, true
}

// GetOrCreate returns the flow for id, creating a new one under a fresh ID
// when id is unknown. created reports whether a new flow was made.
func (s *Store) GetOrCreate(id string) (flow *Flow, created bool) {
	if id != "" {
		if f, ok := s.Get(id); ok {
			return f, false
		}
	}
	f := s.newFlow(uuid.NewString())
	s.mu.Lock()
	s.flows[f.ID()] = &entry{flow: f, lastSeen: s.nowF()}
	s.mu.Unlock()
	return f, true
}

// Delete forgets the flow for id
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.flows, id)
	s.mu.Unlock()
}

// Len returns the number of tracked flows
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// Sweep removes idle flows and returns how many were dropped
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowF()
	n := 0
	for id, e := range s.flows {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.flows, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
