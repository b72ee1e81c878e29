package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/http/middleware"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError переводит доменную ошибку в HTTP-ответ.
// Всё, что не из доменной таксономии, уходит как 500 без деталей.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsMinimumPayment(err):
		respondError(c, http.StatusBadRequest, "minimum_payment", err.Error())
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsAuthorization(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsNotAvailable(err):
		respondError(c, http.StatusConflict, "not_available", err.Error())
	case domain.IsNotAllowed(err):
		respondError(c, http.StatusUnprocessableEntity, "not_allowed", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
