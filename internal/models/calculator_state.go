package models

import (
	"encoding/json"
	"time"
)

// CalculatorState is the last committed form of one calculator in one
// browser session, together with the result computed from it.
// A session holds at most one state per calculator.
type CalculatorState struct {
	SessionID  string          `db:"session_id" json:"sessionId"`
	Calculator string          `db:"calculator" json:"calculator"`
	Inputs     json.RawMessage `db:"inputs" json:"inputs"`
	Result     json.RawMessage `db:"result" json:"result,omitempty"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// TableName is the table backing CalculatorState.
func (CalculatorState) TableName() string {
	return "calculator_states"
}
