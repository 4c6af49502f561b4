package handlers

import (
	"errors"
	"net/http"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain errors to a status and a client-safe message. Anything
// unrecognised is logged with the request id and reported as a bare 500.
func writeError(c *gin.Context, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "error", err, "route", c.FullPath())
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: msg})
}

func classify(err error) (int, string, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "VALIDATION_ERROR", verr.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "DUPLICATE_EMAIL", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "INVALID_CREDENTIALS", domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrDuplicateTitle):
		return http.StatusBadRequest, "DUPLICATE_TITLE", err.Error()
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, "MISSING_TOKEN", domain.ErrMissingToken.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", domain.ErrInvalidToken.Error()
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

// bindError reports a request body that failed to decode or validate.
func bindError(c *gin.Context, err error) {
	msg := "invalid request body"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonFieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			msg = field + " is required"
		case "email":
			msg = field + " must be a valid email address"
		case "max":
			msg = field + " is too long"
		default:
			msg = field + " is invalid"
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION_ERROR", Message: msg})
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	b := []byte(field)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
