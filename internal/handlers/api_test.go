package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/randwise/api/internal/calculator"
	"github.com/stwalsh4118/randwise/api/internal/content"
	"github.com/stwalsh4118/randwise/api/internal/datasets"
	apierrors "github.com/stwalsh4118/randwise/api/internal/errors"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/logger"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
	"github.com/stwalsh4118/randwise/api/internal/repository"
	"github.com/stwalsh4118/randwise/api/internal/search"
	"github.com/stwalsh4118/randwise/api/internal/services"
)

const testSession = "7d9f2a64-0c3b-4f1e-9a8d-5b6c7e8f9a0b"

type fixedSource []search.Record

func (s fixedSource) Name() string { return "fixed" }

func (s fixedSource) Records(context.Context) ([]search.Record, error) { return s, nil }

var searchRecords = fixedSource{
	{ID: "calculator/home-loan", Title: "Home loan calculator", Description: "Monthly bond repayments", Href: "/calculators/home-loan", Category: search.CategoryCalculator, Tags: []string{"bond", "mortgage"}},
	{ID: "data/prime-rate", Title: "Prime rate", Description: "Historical prime lending rate", Href: "/data/prime-rate", Category: search.CategoryData},
}

// setupAPIRouter wires every API handler over in-memory storage, the way the
// server does.
func setupAPIRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	forms.RegisterValidators()

	log := logger.Nop()
	now := func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }
	calcService := services.NewCalculatorService(log, now)
	stateService := services.NewStateService(repository.NewStateRepositoryMemory(time.Hour), calcService, log)
	searchService := services.NewSearchService(
		[]content.Source{searchRecords},
		repository.NewMemoryCache(),
		time.Hour,
		search.DefaultOptions(),
		log,
	)

	calculators := NewCalculatorHandler(calcService)
	state := NewStateHandler(stateService)
	reference := NewReferenceHandler()
	searchHandler := NewSearchHandler(searchService)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/calculators", calculators.List)
		v1.GET("/calculators/:name", calculators.Calculate)

		sessions := v1.Group("/calculators/:name/state", middleware.Session())
		{
			sessions.GET("", state.Get)
			sessions.PUT("", state.Put)
			sessions.DELETE("", state.Delete)
		}

		v1.GET("/tax-years", reference.TaxYears)
		v1.GET("/data", reference.Datasets)
		v1.GET("/data/:slug", reference.Dataset)

		v1.GET("/search/index", middleware.CacheControl(time.Hour, time.Hour), searchHandler.Index)
		v1.GET("/search", searchHandler.Search)
	}

	return router
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(middleware.SessionIDHeader, testSession)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var response apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Error
}

func TestCalculatorHandler_List(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/calculators", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response CatalogueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Calculators, len(forms.Names()))
	assert.Equal(t, forms.NameIncomeTax, response.Calculators[0].Slug)
	assert.Contains(t, response.Calculators[0].Params, "income")
}

func TestCalculatorHandler_Calculate(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedCode   string
		expectedDetail map[string]interface{}
	}{
		{
			name:           "valid ltv",
			target:         "/api/v1/calculators/ltv?property=1000000&loan=800000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "deposit must be below price",
			target:         "/api/v1/calculators/home-loan?price=800000&deposit=900000",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedDetail: map[string]interface{}{"deposit": "Must be less than price"},
		},
		{
			name:           "missing required income",
			target:         "/api/v1/calculators/income-tax?age=40",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedDetail: map[string]interface{}{"income": "This field is required"},
		},
		{
			name:           "retired tax year",
			target:         "/api/v1/calculators/income-tax?income=500000&year=1999/2000",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedDetail: map[string]interface{}{"year": "Must be a supported tax year"},
		},
		{
			name:           "undecodable number",
			target:         "/api/v1/calculators/tfsa?contribution=lots",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "term rounds to zero months",
			target:         "/api/v1/calculators/home-loan?price=1000000&rate=10&term=0.01&termUnit=years",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedDetail: map[string]interface{}{"term": "Must be at least 1 month"},
		},
		{
			name:           "vanishing tfsa contribution",
			target:         "/api/v1/calculators/tfsa?contribution=1e-20",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedDetail: map[string]interface{}{"contribution": "Must be greater than or equal to 0.01"},
		},
		{
			name:           "interest rate above ceiling",
			target:         "/api/v1/calculators/interest?principal=1000&rate=1e300&period=hourly&type=daily",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedDetail: map[string]interface{}{"rate": "Must be less than or equal to 1000"},
		},
		{
			name:           "interest accrual overflows",
			target:         "/api/v1/calculators/interest?principal=1000&rate=1000&period=hourly&type=hourly",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "unknown calculator",
			target:         "/api/v1/calculators/gold",
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.ErrNotFound,
		},
	}

	router := setupAPIRouter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode == "" {
				return
			}
			detail := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, detail.Code)
			if tt.expectedDetail != nil {
				assert.Equal(t, tt.expectedDetail, detail.Details)
			}
		})
	}
}

func TestCalculatorHandler_CalculateKeepsDefaults(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/calculators/home-loan?price=1000000&deposit=100000", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	inputs := body["inputs"].(map[string]interface{})
	assert.Equal(t, 10.5, inputs["rate"])
	assert.Equal(t, "years", inputs["termUnit"])
	result := body["result"].(map[string]interface{})
	assert.InDelta(t, 8985.42, result["monthly_payment"], 0.01)
}

func TestStateHandler_DeepLinkThenRestore(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/calculators/ltv/state?property=1000000&loan=800000&ref=mail", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testSession, w.Header().Get(middleware.SessionIDHeader))
	body := decodeBody(t, w)
	assert.Equal(t, "url", body["source"])
	assert.Equal(t, 80.0, body["result"].(map[string]interface{})["ltv"])

	query, err := url.ParseQuery(body["query"].(string))
	require.NoError(t, err)
	assert.Equal(t, "mail", query.Get("ref"))
	assert.Equal(t, "loan", query.Get("mode"))

	// Without params the stored state comes back.
	w = doRequest(router, http.MethodGet, "/api/v1/calculators/ltv/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "stored", body["source"])
	assert.Equal(t, 800000.0, body["inputs"].(map[string]interface{})["loan"])
}

func TestStateHandler_InvalidDeepLinkResets(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/calculators/ltv/state?property=500000&loan=600000", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["reset"])
	assert.Equal(t, "default", body["source"])
	assert.Nil(t, body["result"])
	assert.Equal(t, "", body["query"])
}

func TestStateHandler_UncomputableDeepLinksReset(t *testing.T) {
	router := setupAPIRouter(t)

	for _, target := range []string{
		"/api/v1/calculators/home-loan/state?price=1000000&rate=10&term=0.01&termUnit=years&ref=x",
		"/api/v1/calculators/interest/state?principal=1000&rate=1000&period=hourly&type=hourly&ref=x",
		"/api/v1/calculators/tfsa/state?contribution=1e-20&ref=x",
		"/api/v1/calculators/tfsa/state?contribution=1&ref=x",
	} {
		w := doRequest(router, http.MethodGet, target, "")

		require.Equal(t, http.StatusOK, w.Code, target)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["reset"], target)
		assert.Nil(t, body["result"], target)
		assert.Equal(t, "ref=x", body["query"], target)
	}
}

func TestStateHandler_UncomputableCommit(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodPut, "/api/v1/calculators/tfsa/state", `{"contribution":0.5}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, apierrors.ErrBadRequest, detail.Code)
	assert.Contains(t, detail.Details["reason"], "projection out of range")
}

func TestStateHandler_CommitAndClear(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodPut, "/api/v1/calculators/tfsa/state?tab=chart", `{"current":100000,"contribution":3000}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "committed", body["source"])
	inputs := body["inputs"].(map[string]interface{})
	assert.Equal(t, "monthly", inputs["unit"], "omitted fields keep defaults")

	query, err := url.ParseQuery(body["query"].(string))
	require.NoError(t, err)
	assert.Equal(t, "3000", query.Get("contribution"))
	assert.Equal(t, "chart", query.Get("tab"))

	w = doRequest(router, http.MethodDelete, "/api/v1/calculators/tfsa/state?contribution=3000&tab=chart", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "tab=chart", body["query"])

	w = doRequest(router, http.MethodGet, "/api/v1/calculators/tfsa/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", decodeBody(t, w)["source"])
}

func TestStateHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		session        string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "invalid commit",
			method:         http.MethodPut,
			target:         "/api/v1/calculators/tfsa/state",
			body:           `{"contribution":0}`,
			session:        testSession,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
		},
		{
			name:           "malformed body",
			method:         http.MethodPut,
			target:         "/api/v1/calculators/tfsa/state",
			body:           `{"contribution":`,
			session:        testSession,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "malformed session",
			method:         http.MethodGet,
			target:         "/api/v1/calculators/ltv/state",
			session:        "not-a-session",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "unknown calculator",
			method:         http.MethodDelete,
			target:         "/api/v1/calculators/gold/state",
			session:        testSession,
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.ErrNotFound,
		},
	}

	router := setupAPIRouter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			req.Header.Set(middleware.SessionIDHeader, tt.session)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
		})
	}
}

func TestStateHandler_MintsSession(t *testing.T) {
	router := setupAPIRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calculators/interest/state", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Header().Get(middleware.SessionIDHeader)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, sessionID, decodeBody(t, w)["session_id"])
}

func TestReferenceHandler_TaxYears(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/tax-years", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response TaxYearsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, calculator.DefaultTaxYear(), response.Default)
	assert.Len(t, response.TaxYears, len(calculator.TaxYears()))
	assert.NotEmpty(t, response.TaxYears[0].Brackets)
}

func TestReferenceHandler_Datasets(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list DatasetsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Datasets, len(datasets.All()))

	w = doRequest(router, http.MethodGet, "/api/v1/data/"+datasets.SlugPrimeRate, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, datasets.SlugPrimeRate, body["slug"])
	assert.Contains(t, body, "latest")
	assert.Contains(t, body, "high")

	w = doRequest(router, http.MethodGet, "/api/v1/data/gold-price", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierrors.ErrNotFound, decodeError(t, w).Code)
}

func TestSearchHandler_Index(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/search/index", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600, s-maxage=3600, stale-while-revalidate=3600", w.Header().Get("Cache-Control"))
	var response IndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
}

func TestSearchHandler_Search(t *testing.T) {
	router := setupAPIRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/search?q=mortgge", "")
	require.Equal(t, http.StatusOK, w.Code)
	var response services.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Groups.Calculator, 1)
	assert.Equal(t, "calculator/home-loan", response.Groups.Calculator[0].ID)

	w = doRequest(router, http.MethodGet, "/api/v1/search?q=prime&limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"limit": "Must be less than or equal to 50"}, decodeError(t, w).Details)
}
