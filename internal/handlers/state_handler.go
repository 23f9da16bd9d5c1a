package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/randwise/api/internal/errors"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
	"github.com/stwalsh4118/randwise/api/internal/services"
)

// StateHandler serves the per-session form state of each calculator. The
// request query string is the query of the calculator page itself, so the
// returned query can replace it.
type StateHandler struct {
	service services.StateService
}

// NewStateHandler creates a new StateHandler instance.
func NewStateHandler(service services.StateService) *StateHandler {
	return &StateHandler{
		service: service,
	}
}

// Get handles GET /api/v1/calculators/:name/state.
// It applies a deep link if the query carries one, otherwise it restores the
// session's stored state.
func (h *StateHandler) Get(c *gin.Context) {
	view, err := h.service.Resolve(
		c.Request.Context(),
		middleware.GetSessionID(c),
		c.Param("name"),
		c.Request.URL.Query(),
	)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Put handles PUT /api/v1/calculators/:name/state.
// The body holds the form inputs; fields it omits keep their defaults.
func (h *StateHandler) Put(c *gin.Context) {
	form, err := forms.New(c.Param("name"))
	if err != nil {
		apierrors.NotFound(c, "Unknown calculator")
		return
	}

	if err := c.ShouldBindJSON(form); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	view, err := h.service.Commit(c.Request.Context(), middleware.GetSessionID(c), form, c.Request.URL.Query())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/v1/calculators/:name/state.
func (h *StateHandler) Delete(c *gin.Context) {
	view, err := h.service.Clear(
		c.Request.Context(),
		middleware.GetSessionID(c),
		c.Param("name"),
		c.Request.URL.Query(),
	)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *StateHandler) handleError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, services.ErrInvalidSession):
		apierrors.BadRequest(c, "Invalid session id", nil)
	case errors.Is(err, forms.ErrUnknownCalculator):
		apierrors.NotFound(c, "Unknown calculator")
	case errors.As(err, &validationErrors):
		apierrors.ValidationError(c, validationErrors)
	case errors.Is(err, services.ErrUncomputable):
		apierrors.BadRequest(c, "Inputs cannot be computed", map[string]interface{}{"reason": err.Error()})
	default:
		apierrors.InternalServerError(c, "Failed to process calculator state", err)
	}
}
