package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agamariel/songorders/internal/auth"
	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAdminService - мок для тестирования handlers
type MockAdminService struct {
	CreateAdminFunc func(ctx context.Context, req *validation.CreateAdminRequest) (*models.AdminUserResponse, error)
	LoginFunc       func(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error)
	GetAdminFunc    func(ctx context.Context, id uuid.UUID) (*models.AdminUserResponse, error)
}

func (m *MockAdminService) CreateAdmin(ctx context.Context, req *validation.CreateAdminRequest) (*models.AdminUserResponse, error) {
	if m.CreateAdminFunc != nil {
		return m.CreateAdminFunc(ctx, req)
	}
	return &models.AdminUserResponse{}, nil
}

func (m *MockAdminService) Login(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &models.LoginResponse{}, nil
}

func (m *MockAdminService) GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUserResponse, error) {
	if m.GetAdminFunc != nil {
		return m.GetAdminFunc(ctx, id)
	}
	return &models.AdminUserResponse{ID: id}, nil
}

func TestAdminHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockService    *MockAdminService
		expectedStatus int
		checkCookie    bool
	}{
		{
			name:        "successful login",
			requestBody: `{"email":"admin@example.com","password":"Secret123"}`,
			mockService: &MockAdminService{
				LoginFunc: func(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error) {
					return &models.LoginResponse{
						Token: "test-token",
						Admin: &models.AdminUserResponse{ID: uuid.New(), Email: req.Email},
					}, nil
				},
			},
			expectedStatus: http.StatusOK,
			checkCookie:    true,
		},
		{
			name:           "invalid JSON",
			requestBody:    `{"email":"admin@example.com"`,
			mockService:    &MockAdminService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "missing fields",
			requestBody: `{"email":"","password":""}`,
			mockService: &MockAdminService{
				LoginFunc: func(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error) {
					return nil, validation.NewFieldError("email", "is required")
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "wrong password",
			requestBody: `{"email":"admin@example.com","password":"nope"}`,
			mockService: &MockAdminService{
				LoginFunc: func(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error) {
					return nil, services.ErrInvalidCredentials
				},
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:        "internal error",
			requestBody: `{"email":"admin@example.com","password":"Secret123"}`,
			mockService: &MockAdminService{
				LoginFunc: func(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error) {
					return nil, errors.New("db error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(tt.requestBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := NewAdminHandler(tt.mockService, &mockOrderService{}, time.Hour, zap.NewNop())
			err := handler.Login(c)

			if tt.expectedStatus >= 400 {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, tt.expectedStatus, he.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkCookie {
				assert.Equal(t, "Bearer test-token", rec.Header().Get("Authorization"))
				cookies := rec.Result().Cookies()
				require.Len(t, cookies, 1)
				assert.Equal(t, "Authorization", cookies[0].Name)
				assert.Equal(t, "test-token", cookies[0].Value)
				assert.Equal(t, 3600, cookies[0].MaxAge)
			}
		})
	}
}

func TestAdminHandler_CreateAdminRequiresSuperAdmin(t *testing.T) {
	const secret = "test-secret"

	var created int
	svc := &MockAdminService{
		CreateAdminFunc: func(ctx context.Context, req *validation.CreateAdminRequest) (*models.AdminUserResponse, error) {
			created++
			if req.Email == "taken@example.com" {
				return nil, storage.ErrAdminEmailExists
			}
			return &models.AdminUserResponse{ID: uuid.New(), Email: req.Email, Role: req.Role}, nil
		},
	}

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop())
	h := NewAdminHandler(svc, &mockOrderService{}, time.Hour, zap.NewNop())
	g := e.Group("/api/admin", auth.JWTMiddleware(secret))
	g.POST("/users", h.CreateAdmin, auth.RequireRole(models.AdminRoleSuperAdmin))

	token := func(role models.AdminRole) string {
		tok, err := auth.GenerateToken(&models.AdminUser{ID: uuid.New(), Email: "x@example.com", Role: role}, secret, time.Hour)
		require.NoError(t, err)
		return tok
	}
	post := func(tok, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	body := `{"email":"new@example.com","password":"Secret123","name":"New","role":"ADMIN"}`
	assert.Equal(t, http.StatusUnauthorized, post("", body))
	assert.Equal(t, http.StatusForbidden, post(token(models.AdminRoleAdmin), body))
	assert.Equal(t, 0, created)

	assert.Equal(t, http.StatusCreated, post(token(models.AdminRoleSuperAdmin), body))
	assert.Equal(t, http.StatusConflict, post(token(models.AdminRoleSuperAdmin), `{"email":"taken@example.com","password":"Secret123","name":"T","role":"ADMIN"}`))
}

func TestAdminHandler_Me(t *testing.T) {
	adminID := uuid.New()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), httptest.NewRecorder())
	handler := NewAdminHandler(&MockAdminService{}, &mockOrderService{}, time.Hour, nil)

	var he *echo.HTTPError
	require.ErrorAs(t, handler.Me(c), &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), rec)
	c.Set(string(auth.AdminIDKey), adminID)
	require.NoError(t, handler.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), adminID.String())

	missing := NewAdminHandler(&MockAdminService{
		GetAdminFunc: func(ctx context.Context, id uuid.UUID) (*models.AdminUserResponse, error) {
			return nil, storage.ErrAdminNotFound
		},
	}, &mockOrderService{}, time.Hour, nil)
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), httptest.NewRecorder())
	c.Set(string(auth.AdminIDKey), adminID)
	require.ErrorAs(t, missing.Me(c), &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestAdminHandler_Dashboard(t *testing.T) {
	orders := &mockOrderService{
		DashboardFunc: func(ctx context.Context) (*models.DashboardResponse, error) {
			return &models.DashboardResponse{
				Total:    3,
				ByStatus: map[models.OrderStatus]int{models.OrderStatusNew: 2, models.OrderStatusPaid: 1},
			}, nil
		},
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil), rec)

	handler := NewAdminHandler(&MockAdminService{}, orders, time.Hour, nil)
	require.NoError(t, handler.Dashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":3,"byStatus":{"NEW":2,"PAID":1}}`, rec.Body.String())
}
