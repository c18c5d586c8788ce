package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/songorders/internal/lifecycle"
	"github.com/agamariel/songorders/internal/numbering"
	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

func newHTTPError(code int, resp ErrorResponse) *echo.HTTPError {
	return echo.NewHTTPError(code, resp)
}

// toHTTPError переводит ошибку сервисного слоя в HTTP-ответ.
// Неизвестные ошибки логируются, клиент получает общее сообщение.
func toHTTPError(log *zap.Logger, op string, err error) error {
	var (
		verr *validation.ValidationError
		terr *lifecycle.InvalidTransitionError
		herr *echo.HTTPError
	)

	switch {
	case errors.As(err, &herr):
		return herr
	case errors.As(err, &verr):
		return newHTTPError(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: verr.Fields})
	case errors.As(err, &terr):
		return newHTTPError(http.StatusBadRequest, ErrorResponse{Error: "Invalid status transition", Message: terr.Error()})
	case errors.Is(err, storage.ErrOrderNotFound):
		return newHTTPError(http.StatusNotFound, ErrorResponse{Error: "Order not found"})
	case errors.Is(err, storage.ErrMessageNotFound):
		return newHTTPError(http.StatusNotFound, ErrorResponse{Error: "Message not found"})
	case errors.Is(err, storage.ErrPaymentNotFound):
		return newHTTPError(http.StatusNotFound, ErrorResponse{Error: "Payment not found"})
	case errors.Is(err, storage.ErrAdminNotFound):
		return newHTTPError(http.StatusNotFound, ErrorResponse{Error: "Admin user not found"})
	case errors.Is(err, services.ErrConcurrentUpdate):
		return newHTTPError(http.StatusConflict, ErrorResponse{Error: "Order was modified concurrently, please retry"})
	case errors.Is(err, storage.ErrAdminEmailExists):
		return newHTTPError(http.StatusConflict, ErrorResponse{Error: "Email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return newHTTPError(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
	case errors.Is(err, numbering.ErrGeneration):
		log.Error("order number generation failed", zap.String("op", op), zap.Error(err))
		return newHTTPError(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate order number. Please check database connection."})
	}

	log.Error("request failed", zap.String("op", op), zap.Error(err))
	return newHTTPError(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// parseID разбирает UUID из параметра пути.
func parseID(c echo.Context, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, newHTTPError(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + " ID format"})
	}
	return id, nil
}

// bindStrict читает JSON-тело, отклоняя неизвестные поля.
func bindStrict(c echo.Context, dst any) error {
	if err := validation.DecodeStrict(c.Request().Body, dst); err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			return newHTTPError(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: verr.Fields})
		}
		return newHTTPError(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	return nil
}

// bind читает JSON-тело средствами echo.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return newHTTPError(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	return nil
}

// NewHTTPErrorHandler приводит все ошибки echo к формату ErrorResponse.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var herr *echo.HTTPError
		if !errors.As(err, &herr) {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			herr = newHTTPError(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}

		body, ok := herr.Message.(ErrorResponse)
		if !ok {
			body = ErrorResponse{Error: http.StatusText(herr.Code)}
			if msg, isString := herr.Message.(string); isString && msg != body.Error {
				body.Message = msg
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(herr.Code)
		} else {
			err = c.JSON(herr.Code, body)
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}
