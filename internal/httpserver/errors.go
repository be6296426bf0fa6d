package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service/anonymous"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps a service error to its HTTP status and public body.
func statusFor(err error) (int, errorBody) {
	var verr *domain.ValidationError
	var gerr *payment.GatewayError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, anonymous.ErrInvalidToken):
		return http.StatusUnauthorized, errorBody{Error: "invalid session token"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.Is(err, payment.ErrCredentialsMissing):
		return http.StatusInternalServerError, errorBody{Error: "Razorpay credentials missing"}
	case errors.As(err, &gerr):
		return http.StatusBadGateway, errorBody{Error: gerr.Description}
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, errorBody{Error: "upstream service failed"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", requestIDFrom(c)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, field, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: message, Field: field})
}
