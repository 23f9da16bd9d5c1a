package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/logger"
	"github.com/stwalsh4118/randwise/api/internal/models"
	"github.com/stwalsh4118/randwise/api/internal/repository"
	"github.com/stwalsh4118/randwise/api/internal/urlstate"
)

// ErrInvalidSession is returned for a session ID that is not a UUID.
var ErrInvalidSession = errors.New("invalid session id")

// StateSource says where the inputs of a StateView came from.
type StateSource string

const (
	SourceURL       StateSource = "url"
	SourceStored    StateSource = "stored"
	SourceDefault   StateSource = "default"
	SourceCommitted StateSource = "committed"
)

// StateView is a calculator's form state as the page should show it.
type StateView struct {
	SessionID  string      `json:"session_id"`
	Calculator string      `json:"calculator"`
	Source     StateSource `json:"source"`
	Inputs     forms.Form  `json:"inputs"`
	// Result is nil until the inputs have been validated and computed.
	Result interface{} `json:"result"`
	// Query is the canonical query string for the page URL.
	Query string `json:"query"`
	// Reset is set when a deep link was rejected and the form restored to
	// its defaults.
	Reset       bool   `json:"reset"`
	ResetReason string `json:"reset_reason,omitempty"`
}

// StateService reconciles a calculator's URL parameters with its stored form
// state. URL parameters take precedence over stored state, which takes
// precedence over defaults.
type StateService interface {
	// Resolve applies a deep link, falling back to stored state and then to
	// defaults. A valid deep link is computed and stored; an invalid one
	// resets the form and leaves stored state untouched.
	Resolve(ctx context.Context, sessionID, name string, query url.Values) (*StateView, error)

	// Commit validates, computes and stores a manually entered form and
	// returns query with the managed parameters set to it.
	Commit(ctx context.Context, sessionID string, form forms.Form, query url.Values) (*StateView, error)

	// Clear deletes stored state and returns query without the managed
	// parameters.
	Clear(ctx context.Context, sessionID, name string, query url.Values) (*StateView, error)
}

// stateService is the concrete implementation of StateService.
type stateService struct {
	repo  repository.StateRepository
	calcs CalculatorService
	log   *logger.Logger
}

// NewStateService creates a StateService.
func NewStateService(repo repository.StateRepository, calcs CalculatorService, log *logger.Logger) StateService {
	return &stateService{
		repo:  repo,
		calcs: calcs,
		log:   log,
	}
}

func (s *stateService) Resolve(ctx context.Context, sessionID, name string, query url.Values) (*StateView, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	form, err := forms.New(name)
	if err != nil {
		return nil, err
	}
	log := s.log.WithSession(sessionID, name)

	res := forms.Resolve(form, query)
	switch {
	case res.Reset:
		return rejectDeepLink(log, sessionID, form, res.Query, res.Err), nil

	case res.FromURL:
		result, err := s.calcs.Evaluate(ctx, form)
		if err != nil {
			// The engine rejected inputs the form rules let through; the
			// deep link is invalid all the same.
			form.Reset()
			return rejectDeepLink(log, sessionID, form, urlstate.Clear(form.Fields(), query), err), nil
		}
		if err := s.save(ctx, sessionID, form, result); err != nil {
			return nil, err
		}
		log.Info("Deep link applied", map[string]interface{}{
			"changed": res.Changed,
		})
		return &StateView{
			SessionID:  sessionID,
			Calculator: name,
			Source:     SourceURL,
			Inputs:     form,
			Result:     result,
			Query:      urlstate.Commit(form.Fields(), query).Encode(),
		}, nil
	}

	stored, err := s.repo.Find(ctx, sessionID, name)
	if err != nil {
		log.Error("Failed to load calculator state", err, nil)
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if stored != nil {
		view, ok := s.restore(ctx, log, sessionID, form, stored, query)
		if ok {
			return view, nil
		}
	}

	return &StateView{
		SessionID:  sessionID,
		Calculator: name,
		Source:     SourceDefault,
		Inputs:     form,
		Query:      query.Encode(),
	}, nil
}

// rejectDeepLink reports a deep link that was discarded. form must already be
// at its defaults and query stripped of the managed parameters.
func rejectDeepLink(log *logger.Logger, sessionID string, form forms.Form, query url.Values, cause error) *StateView {
	log.Warn("Deep link rejected, form reset", map[string]interface{}{
		"error": cause.Error(),
	})
	return &StateView{
		SessionID:   sessionID,
		Calculator:  form.Name(),
		Source:      SourceDefault,
		Inputs:      form,
		Query:       query.Encode(),
		Reset:       true,
		ResetReason: cause.Error(),
	}
}

// restore rebuilds a view from stored inputs. Stored inputs that no longer
// validate, for example after a tax year is retired, are ignored and form is
// left at its defaults.
func (s *stateService) restore(ctx context.Context, log *logger.Logger, sessionID string, form forms.Form, stored *models.CalculatorState, query url.Values) (*StateView, bool) {
	if err := json.Unmarshal(stored.Inputs, form); err != nil {
		log.Warn("Discarding unreadable stored state", map[string]interface{}{"error": err.Error()})
		form.Reset()
		return nil, false
	}
	result, err := s.calcs.Evaluate(ctx, form)
	if err != nil {
		log.Warn("Discarding stale stored state", map[string]interface{}{"error": err.Error()})
		form.Reset()
		return nil, false
	}

	log.Debug("Restored stored state", nil)
	return &StateView{
		SessionID:  sessionID,
		Calculator: form.Name(),
		Source:     SourceStored,
		Inputs:     form,
		Result:     result,
		Query:      urlstate.Commit(form.Fields(), query).Encode(),
	}, true
}

func (s *stateService) Commit(ctx context.Context, sessionID string, form forms.Form, query url.Values) (*StateView, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}

	result, err := s.calcs.Evaluate(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sessionID, form, result); err != nil {
		return nil, err
	}

	s.log.WithSession(sessionID, form.Name()).Info("Calculator state committed", nil)
	return &StateView{
		SessionID:  sessionID,
		Calculator: form.Name(),
		Source:     SourceCommitted,
		Inputs:     form,
		Result:     result,
		Query:      urlstate.Commit(form.Fields(), query).Encode(),
	}, nil
}

func (s *stateService) Clear(ctx context.Context, sessionID, name string, query url.Values) (*StateView, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	form, err := forms.New(name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, sessionID, name); err != nil {
		s.log.Error("Failed to clear calculator state", err, map[string]interface{}{
			"session_id": sessionID,
			"calculator": name,
		})
		return nil, fmt.Errorf("failed to clear state: %w", err)
	}

	s.log.WithSession(sessionID, name).Info("Calculator state cleared", nil)
	return &StateView{
		SessionID:  sessionID,
		Calculator: name,
		Source:     SourceDefault,
		Inputs:     form,
		Query:      urlstate.Clear(form.Fields(), query).Encode(),
	}, nil
}

func (s *stateService) save(ctx context.Context, sessionID string, form forms.Form, result interface{}) error {
	inputs, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	state := &models.CalculatorState{
		SessionID:  sessionID,
		Calculator: form.Name(),
		Inputs:     inputs,
		Result:     encoded,
	}
	if err := s.repo.Save(ctx, state); err != nil {
		s.log.Error("Failed to save calculator state", err, map[string]interface{}{
			"session_id": sessionID,
			"calculator": form.Name(),
		})
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func checkSession(sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}
	return nil
}
