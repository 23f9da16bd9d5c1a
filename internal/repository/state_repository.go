package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/randwise/api/internal/database"
	"github.com/stwalsh4118/randwise/api/internal/models"
)

// StateRepository defines the interface for calculator state persistence.
type StateRepository interface {
	// Find returns the stored state of a calculator in a session.
	// Returns nil, nil if nothing is stored (not an error).
	Find(ctx context.Context, sessionID, calculator string) (*models.CalculatorState, error)

	// Save inserts or replaces the state. UpdatedAt is set by the store.
	Save(ctx context.Context, state *models.CalculatorState) error

	// Delete removes the stored state. Deleting a missing state is not an error.
	Delete(ctx context.Context, sessionID, calculator string) error
}

// stateRepository is the PostgreSQL implementation of StateRepository.
type stateRepository struct {
	db *database.Database
}

// NewStateRepository creates a StateRepository backed by calculator_states.
func NewStateRepository(db *database.Database) StateRepository {
	return &stateRepository{
		db: db,
	}
}

func (r *stateRepository) Find(ctx context.Context, sessionID, calculator string) (*models.CalculatorState, error) {
	query := `
		SELECT session_id, calculator, inputs, result, updated_at
		FROM calculator_states
		WHERE session_id = $1 AND calculator = $2
	`

	var state models.CalculatorState
	err := r.db.Pool.QueryRow(ctx, query, sessionID, calculator).Scan(
		&state.SessionID,
		&state.Calculator,
		&state.Inputs,
		&state.Result,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s state for session %s: %w", calculator, sessionID, err)
	}

	return &state, nil
}

func (r *stateRepository) Save(ctx context.Context, state *models.CalculatorState) error {
	query := `
		INSERT INTO calculator_states (session_id, calculator, inputs, result, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (session_id, calculator) DO UPDATE
		SET inputs = EXCLUDED.inputs,
			result = EXCLUDED.result,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	// A missing result is stored as SQL NULL rather than a JSON null.
	var result interface{}
	if len(state.Result) > 0 {
		result = state.Result
	}

	err := r.db.Pool.QueryRow(ctx, query,
		state.SessionID,
		state.Calculator,
		state.Inputs,
		result,
	).Scan(&state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save %s state for session %s: %w", state.Calculator, state.SessionID, err)
	}
	return nil
}

func (r *stateRepository) Delete(ctx context.Context, sessionID, calculator string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM calculator_states WHERE session_id = $1 AND calculator = $2`,
		sessionID, calculator,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s state for session %s: %w", calculator, sessionID, err)
	}
	return nil
}
