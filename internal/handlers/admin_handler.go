package handlers

import (
	"net/http"
	"time"

	"github.com/agamariel/songorders/internal/auth"
	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler обрабатывает HTTP-запросы админки.
type AdminHandler struct {
	adminService    services.AdminService
	orderService    services.OrderService
	tokenExpiration time.Duration
	log             *zap.Logger
}

// NewAdminHandler создаёт новый экземпляр AdminHandler.
func NewAdminHandler(adminService services.AdminService, orderService services.OrderService, tokenExpiration time.Duration, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		adminService:    adminService,
		orderService:    orderService,
		tokenExpiration: tokenExpiration,
		log:             log,
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req validation.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.adminService.Login(c.Request().Context(), &req)
	if err != nil {
		return toHTTPError(h.log, "admin login", err)
	}

	// Установка токена в cookie и заголовок
	h.setAuthToken(c, resp.Token)

	return c.JSON(http.StatusOK, resp)
}

// CreateAdmin обрабатывает POST /api/admin/users. Доступен только SUPER_ADMIN.
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	var req validation.CreateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	admin, err := h.adminService.CreateAdmin(c.Request().Context(), &req)
	if err != nil {
		return toHTTPError(h.log, "create admin", err)
	}

	return c.JSON(http.StatusCreated, admin)
}

// Me обрабатывает GET /api/admin/me.
func (h *AdminHandler) Me(c echo.Context) error {
	adminID, err := auth.GetAdminIDFromContext(c)
	if err != nil {
		return err
	}

	admin, err := h.adminService.GetAdmin(c.Request().Context(), adminID)
	if err != nil {
		return toHTTPError(h.log, "get admin", err)
	}

	return c.JSON(http.StatusOK, admin)
}

// Dashboard обрабатывает GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.orderService.Dashboard(c.Request().Context())
	if err != nil {
		return toHTTPError(h.log, "dashboard", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// setAuthToken устанавливает токен в cookie и заголовок ответа.
func (h *AdminHandler) setAuthToken(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     "Authorization",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenExpiration.Seconds()),
	})

	c.Response().Header().Set("Authorization", "Bearer "+token)
}
