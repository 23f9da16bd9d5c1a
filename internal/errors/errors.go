package errors

import (
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
)

// Error codes carried in ErrorDetail.Code.
const (
	ErrNotFound       = "NOT_FOUND"
	ErrBadRequest     = "BAD_REQUEST"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrValidation     = "VALIDATION_ERROR"
	ErrRateLimited    = "RATE_LIMITED"
)

// ErrorResponse is the envelope of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond logs the failure on the request logger, when there is one, and
// writes the envelope. 5xx responses are logged at error level with err.
func respond(c *gin.Context, status int, detail ErrorDetail, logMsg string, err error, fields map[string]interface{}) {
	detail.RequestID = middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["path"] = c.Request.URL.Path
		if status >= http.StatusInternalServerError {
			fields["method"] = c.Request.Method
			log.Error(logMsg, err, fields)
		} else {
			log.Warn(logMsg, fields)
		}
	}

	c.JSON(status, ErrorResponse{Error: detail})
}

// NotFound writes a 404, used for unknown calculators and datasets.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound,
		ErrorDetail{Code: ErrNotFound, Message: message},
		"Resource not found", nil, map[string]interface{}{"message": message})
}

// BadRequest writes a 400 with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	fields := map[string]interface{}{"message": message}
	if details != nil {
		fields["details"] = details
	}
	respond(c, http.StatusBadRequest,
		ErrorDetail{Code: ErrBadRequest, Message: message, Details: details},
		"Bad request", nil, fields)
}

// InternalServerError writes a 500. err is logged but never sent to the
// client, and the response must not be cached.
func InternalServerError(c *gin.Context, message string, err error) {
	c.Header("Cache-Control", "no-store")
	respond(c, http.StatusInternalServerError,
		ErrorDetail{Code: ErrInternalServer, Message: message},
		"Internal server error", err, map[string]interface{}{"message": message})
}

// ValidationError writes a 400 whose details map each offending query
// parameter to a message.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := ValidationDetails(validationErrors)
	respond(c, http.StatusBadRequest,
		ErrorDetail{Code: ErrValidation, Message: "Validation failed for one or more fields", Details: details},
		"Validation error", nil, map[string]interface{}{"fields": details})
}

// TooManyRequests writes a 429 with Retry-After. It is the reject callback
// handed to middleware.RateLimit.
func TooManyRequests(c *gin.Context, retryAfterSeconds int) {
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	respond(c, http.StatusTooManyRequests,
		ErrorDetail{Code: ErrRateLimited, Message: "Too many requests, slow down"},
		"Rate limit exceeded", nil, map[string]interface{}{"client_ip": c.ClientIP()})
}

// ValidationDetails maps each failing field to a message naming the
// violated constraint.
func ValidationDetails(validationErrors validator.ValidationErrors) map[string]interface{} {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}
	return details
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "ltfield":
		return "Must be less than " + fieldParam(err.Param())
	case "ltefield":
		return "Must not exceed " + fieldParam(err.Param())
	case "gtfield":
		return "Must be greater than " + fieldParam(err.Param())
	case "gtefield":
		return "Must be at least " + fieldParam(err.Param())
	case "taxyear":
		return "Must be a supported tax year"
	case "minmonths":
		return "Must be at least " + err.Param() + " month"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}

// fieldParam turns the struct field named by a cross-field rule into the
// lower-camel parameter name clients send.
func fieldParam(structField string) string {
	if structField == "" {
		return structField
	}
	r := []rune(structField)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
