package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/randwise/api/internal/calculator"
	"github.com/stwalsh4118/randwise/api/internal/datasets"
	apierrors "github.com/stwalsh4118/randwise/api/internal/errors"
)

// ReferenceHandler serves the static reference data behind the calculators:
// tax tables and rate histories.
type ReferenceHandler struct{}

// NewReferenceHandler creates a new ReferenceHandler instance.
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// TaxYearsResponse lists the supported tax tables, oldest first.
type TaxYearsResponse struct {
	Default  string                    `json:"default"`
	TaxYears []calculator.TaxYearTable `json:"tax_years"`
}

// DatasetsResponse lists every dataset.
type DatasetsResponse struct {
	Datasets []datasets.Dataset `json:"datasets"`
}

// DatasetResponse is one dataset with its summary points.
type DatasetResponse struct {
	datasets.Dataset
	Latest datasets.Point `json:"latest"`
	High   datasets.Point `json:"high"`
	Low    datasets.Point `json:"low"`
}

// TaxYears handles GET /api/v1/tax-years.
func (h *ReferenceHandler) TaxYears(c *gin.Context) {
	ids := calculator.TaxYears()
	tables := make([]calculator.TaxYearTable, 0, len(ids))
	for _, id := range ids {
		table, err := calculator.LookupTaxYear(id)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to load tax tables", err)
			return
		}
		tables = append(tables, table)
	}

	c.JSON(http.StatusOK, TaxYearsResponse{
		Default:  calculator.DefaultTaxYear(),
		TaxYears: tables,
	})
}

// Datasets handles GET /api/v1/data.
func (h *ReferenceHandler) Datasets(c *gin.Context) {
	c.JSON(http.StatusOK, DatasetsResponse{
		Datasets: datasets.All(),
	})
}

// Dataset handles GET /api/v1/data/:slug.
func (h *ReferenceHandler) Dataset(c *gin.Context) {
	d, err := datasets.Lookup(c.Param("slug"))
	if err != nil {
		if errors.Is(err, datasets.ErrUnknownDataset) {
			apierrors.NotFound(c, "Dataset not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load dataset", err)
		return
	}

	c.JSON(http.StatusOK, DatasetResponse{
		Dataset: d,
		Latest:  d.Latest(),
		High:    d.High(),
		Low:     d.Low(),
	})
}
