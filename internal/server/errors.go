package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/livescan/internal/audit/domain"
	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyTries   = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrUserDisabled),
		errors.Is(err, authdomain.ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidResetCode):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, recorddomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, catalogdomain.ErrNameTaken),
		errors.Is(err, authdomain.ErrLastAdmin),
		errors.Is(err, recorddomain.ErrRecordBilled):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, exportdomain.ErrNoRecords):
		return http.StatusBadRequest, errorPayload{
			Type:    "no_unbilled_records",
			Message: "no unbilled records in the selected range",
		}
	case errors.Is(err, exportdomain.ErrFileNotReady):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "export file has not been uploaded",
		}
	case errors.Is(err, ErrTooManyTries):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, authdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidLabel),
		errors.Is(err, catalogdomain.ErrInvalidRate),
		errors.Is(err, catalogdomain.ErrInvalidAmount),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, recorddomain.ErrInvalidApplicant),
		errors.Is(err, recorddomain.ErrInvalidBillingNumber),
		errors.Is(err, recorddomain.ErrInvalidServiceDate),
		errors.Is(err, recorddomain.ErrInvalidOrganization),
		errors.Is(err, recorddomain.ErrOrganizationInactive),
		errors.Is(err, recorddomain.ErrInvalidService),
		errors.Is(err, recorddomain.ErrInvalidFee),
		errors.Is(err, recorddomain.ErrInvalidTechnician),
		errors.Is(err, recorddomain.ErrInvalidQuantity),
		errors.Is(err, recorddomain.ErrInvalidID),
		errors.Is(err, exportdomain.ErrInvalidDateRange),
		errors.Is(err, exportdomain.ErrInvalidFormat),
		errors.Is(err, exportdomain.ErrInvalidOrganization),
		errors.Is(err, exportdomain.ErrEmptyOrganizations),
		errors.Is(err, exportdomain.ErrInvalidID),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidActor):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, recorddomain.ErrNotFound),
		errors.Is(err, exportdomain.ErrBatchNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
