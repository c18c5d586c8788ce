package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger проверяет доступность хранилища. *pgxpool.Pool ему удовлетворяет.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse - ответ проверки доступности.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler отвечает на GET /api/health.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
	log     *zap.Logger
}

func NewHealthHandler(db Pinger, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{db: db, timeout: 2 * time.Second, log: log}
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	now := time.Now().UTC()
	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database ping failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Message:   "Database connection failed",
			Timestamp: now,
		})
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Success:   true,
		Message:   "Database connection successful",
		Timestamp: now,
	})
}
