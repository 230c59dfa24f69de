package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	entrydomain "github.com/tallyhq/tally/internal/entry/domain"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if fieldErrs := asFieldErrors(err); fieldErrs != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fieldErrs,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, directorydomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
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

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// asFieldErrors converts accumulated domain validation errors to the wire
// shape.
func asFieldErrors(err error) []ValidationError {
	var vErr *settingsdomain.ValidationErrors
	if !errors.As(err, &vErr) || vErr == nil {
		return nil
	}
	out := make([]ValidationError, 0, len(vErr.Errors))
	for _, fe := range vErr.Errors {
		out = append(out, ValidationError{Field: fe.Field, Code: fe.Code, Message: fe.Message})
	}
	return out
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isRateValidationError(err),
		isSettingsValidationError(err),
		isApprovalValidationError(err),
		isPermissionValidationError(err),
		isDirectoryValidationError(err),
		errors.Is(err, entrydomain.ErrInvalidTenant),
		errors.Is(err, entrydomain.ErrInvalidEntry):
		return true
	default:
		return false
	}
}

func isRateValidationError(err error) bool {
	switch {
	case errors.Is(err, ratedomain.ErrInvalidTenant),
		errors.Is(err, ratedomain.ErrInvalidEmployee),
		errors.Is(err, ratedomain.ErrInvalidProject),
		errors.Is(err, ratedomain.ErrInvalidActivity),
		errors.Is(err, ratedomain.ErrInvalidRate),
		errors.Is(err, ratedomain.ErrInvalidCurrency),
		errors.Is(err, ratedomain.ErrInvalidRateType),
		errors.Is(err, ratedomain.ErrInvalidHours),
		errors.Is(err, ratedomain.ErrInvalidPageToken):
		return true
	default:
		return false
	}
}

func isSettingsValidationError(err error) bool {
	return errors.Is(err, settingsdomain.ErrInvalidTenant)
}

func isApprovalValidationError(err error) bool {
	switch {
	case errors.Is(err, approvaldomain.ErrInvalidTenant),
		errors.Is(err, approvaldomain.ErrInvalidEmployee),
		errors.Is(err, approvaldomain.ErrInvalidManager),
		errors.Is(err, approvaldomain.ErrInvalidApprover),
		errors.Is(err, approvaldomain.ErrInvalidEmail),
		errors.Is(err, approvaldomain.ErrUnknownUser),
		errors.Is(err, approvaldomain.ErrSelfManager),
		errors.Is(err, approvaldomain.ErrInvalidEscalationDays):
		return true
	default:
		return false
	}
}

func isPermissionValidationError(err error) bool {
	switch {
	case errors.Is(err, permissiondomain.ErrInvalidTenant),
		errors.Is(err, permissiondomain.ErrInvalidUser),
		errors.Is(err, permissiondomain.ErrInvalidProject):
		return true
	default:
		return false
	}
}

func isDirectoryValidationError(err error) bool {
	switch {
	case errors.Is(err, directorydomain.ErrInvalidTenant),
		errors.Is(err, directorydomain.ErrInvalidUser),
		errors.Is(err, directorydomain.ErrInvalidEmail):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ratedomain.ErrNotFound),
		errors.Is(err, ratedomain.ErrNoDefaultRate),
		errors.Is(err, settingsdomain.ErrNotFound),
		errors.Is(err, approvaldomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog tags request log lines with a coarse error taxonomy.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	default:
		return "client", payload.Type
	}
}
