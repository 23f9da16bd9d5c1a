package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/randwise/api/internal/models"
	"github.com/stwalsh4118/randwise/api/internal/search"
)

// MockStateRepository is a mock implementation of StateRepository for testing
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Find(ctx context.Context, sessionID, calculator string) (*models.CalculatorState, error) {
	args := m.Called(ctx, sessionID, calculator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	state, ok := args.Get(0).(*models.CalculatorState)
	if !ok {
		return nil, args.Error(1)
	}
	return state, args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, state *models.CalculatorState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) Delete(ctx context.Context, sessionID, calculator string) error {
	args := m.Called(ctx, sessionID, calculator)
	return args.Error(0)
}

// MockCache is a mock implementation of Cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	var val []byte
	if v := args.Get(0); v != nil {
		val = v.([]byte)
	}
	return val, args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// stubSource serves fixed records and counts how often it was asked.
type stubSource struct {
	records []search.Record
	calls   int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Records(context.Context) ([]search.Record, error) {
	s.calls++
	return s.records, nil
}
