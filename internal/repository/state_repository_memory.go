package repository

import (
	"context"
	"sync"
	"time"

	"github.com/stwalsh4118/randwise/api/internal/models"
)

type stateKey struct {
	sessionID  string
	calculator string
}

// StateRepositoryMemory is an in-process StateRepository. States are lost on
// restart, and a state not saved for idleExpiry is dropped.
type StateRepositoryMemory struct {
	mu          sync.RWMutex
	states      map[stateKey]models.CalculatorState
	idleExpiry  time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewStateRepositoryMemory creates an empty in-memory state repository and
// starts its expiry loop, which sweeps every idleExpiry/2. A non-positive
// idleExpiry keeps states until restart. Call Stop to end the loop.
func NewStateRepositoryMemory(idleExpiry time.Duration) *StateRepositoryMemory {
	r := &StateRepositoryMemory{
		states:      make(map[stateKey]models.CalculatorState),
		idleExpiry:  idleExpiry,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if idleExpiry > 0 {
		go r.cleanupLoop(idleExpiry / 2)
	}
	return r
}

func (r *StateRepositoryMemory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *StateRepositoryMemory) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, state := range r.states {
		if r.expired(state, now) {
			delete(r.states, key)
		}
	}
}

func (r *StateRepositoryMemory) expired(state models.CalculatorState, now time.Time) bool {
	return r.idleExpiry > 0 && now.Sub(state.UpdatedAt) > r.idleExpiry
}

// Stop ends the expiry loop. It is safe to call more than once.
func (r *StateRepositoryMemory) Stop() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

// Len is the number of states held, expired or not.
func (r *StateRepositoryMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

func (r *StateRepositoryMemory) Find(_ context.Context, sessionID, calculator string) (*models.CalculatorState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[stateKey{sessionID, calculator}]
	if !ok || r.expired(state, r.now()) {
		return nil, nil
	}
	return copyState(state), nil
}

func (r *StateRepositoryMemory) Save(_ context.Context, state *models.CalculatorState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state.UpdatedAt = r.now().UTC()
	r.states[stateKey{state.SessionID, state.Calculator}] = *copyState(*state)
	return nil
}

func (r *StateRepositoryMemory) Delete(_ context.Context, sessionID, calculator string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, stateKey{sessionID, calculator})
	return nil
}

// copyState detaches the raw JSON buffers from the caller's slices.
func copyState(s models.CalculatorState) *models.CalculatorState {
	out := s
	if s.Inputs != nil {
		out.Inputs = append([]byte(nil), s.Inputs...)
	}
	if s.Result != nil {
		out.Result = append([]byte(nil), s.Result...)
	}
	return &out
}
