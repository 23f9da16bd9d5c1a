package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/randwise/api/internal/content"
	apierrors "github.com/stwalsh4118/randwise/api/internal/errors"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
	"github.com/stwalsh4118/randwise/api/internal/services"
)

// CalculatorHandler handles calculator HTTP requests.
type CalculatorHandler struct {
	service services.CalculatorService
}

// NewCalculatorHandler creates a new CalculatorHandler instance.
func NewCalculatorHandler(service services.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{
		service: service,
	}
}

// CatalogueResponse lists the available calculators.
type CatalogueResponse struct {
	Calculators []content.CalculatorInfo `json:"calculators"`
}

// CalculationResponse is a computed calculator result with the inputs it was
// computed from.
type CalculationResponse struct {
	Calculator string      `json:"calculator"`
	Inputs     forms.Form  `json:"inputs"`
	Result     interface{} `json:"result"`
}

// List handles GET /api/v1/calculators.
func (h *CalculatorHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogueResponse{
		Calculators: content.Calculators(),
	})
}

// Calculate handles GET /api/v1/calculators/:name.
// Query parameters missing from the request keep the form defaults.
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	name := c.Param("name")

	form, err := forms.New(name)
	if err != nil {
		apierrors.NotFound(c, "Unknown calculator")
		return
	}

	if err := c.ShouldBindQuery(form); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing calculation", map[string]interface{}{
			"calculator": name,
		})
	}

	result, err := h.service.Evaluate(c.Request.Context(), form)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		if errors.Is(err, services.ErrUncomputable) {
			apierrors.BadRequest(c, "Inputs cannot be computed", map[string]interface{}{"reason": err.Error()})
			return
		}
		apierrors.InternalServerError(c, "Failed to compute result", err)
		return
	}

	c.JSON(http.StatusOK, CalculationResponse{
		Calculator: name,
		Inputs:     form,
		Result:     result,
	})
}
