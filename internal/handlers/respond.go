package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/models"
)

// envelope is the response wrapper every endpoint writes.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Error: &apiError{Message: message, Code: "bad_request"}})
}

// fail maps err onto a status code and the error envelope. Anything outside
// the domain taxonomy is logged and reported as an internal error.
func (h HandlerSet) fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := &apiError{Message: err.Error(), Code: models.Code(err)}

	var validation *models.ValidationError
	if errors.As(err, &validation) {
		body.Field = validation.Field
		body.Message = validation.Message
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		body.Message = "internal server error"
	}

	c.AbortWithStatusJSON(status, envelope{Error: body})
}

func statusFor(err error) int {
	var (
		validation *models.ValidationError
		notFound   *models.NotFoundError
		forbidden  *models.ForbiddenError
		outOfStock *models.OutOfStockError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateAccount), errors.As(err, &outOfStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
