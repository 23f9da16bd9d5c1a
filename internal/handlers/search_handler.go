package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/randwise/api/internal/errors"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
	"github.com/stwalsh4118/randwise/api/internal/search"
	"github.com/stwalsh4118/randwise/api/internal/services"
)

// SearchHandler handles site search requests.
type SearchHandler struct {
	service services.SearchService
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(service services.SearchService) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// SearchRequest represents the query parameters for the search endpoint.
type SearchRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"gte=0,lte=50"`
}

// IndexResponse is the full search index, for client-side search.
type IndexResponse struct {
	Records []search.Record `json:"records"`
	Count   int             `json:"count"`
}

// Index handles GET /api/v1/search/index.
func (h *SearchHandler) Index(c *gin.Context) {
	records, err := h.service.Index(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load search index", err)
		return
	}

	c.JSON(http.StatusOK, IndexResponse{
		Records: records,
		Count:   len(records),
	})
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing search request", map[string]interface{}{
			"query": req.Query,
			"limit": req.Limit,
		})
	}

	resp, err := h.service.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to search", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
