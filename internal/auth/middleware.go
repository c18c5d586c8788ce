package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey - тип для ключей контекста.
type ContextKey string

const (
	// AdminIDKey - ключ для хранения ID сотрудника в контексте.
	AdminIDKey ContextKey = "admin_id"
	// AdminEmailKey - ключ для хранения email сотрудника в контексте.
	AdminEmailKey ContextKey = "admin_email"
	// AdminRoleKey - ключ для хранения роли сотрудника в контексте.
	AdminRoleKey ContextKey = "admin_role"
)

// JWTMiddleware создаёт middleware для проверки JWT токена.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractTokenFromHeader(c)

			if token == "" {
				token = extractTokenFromCookie(c)
			}

			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(string(AdminIDKey), claims.AdminID)
			c.Set(string(AdminEmailKey), claims.Email)
			c.Set(string(AdminRoleKey), claims.Role)

			return next(c)
		}
	}
}

// RequireRole пропускает только сотрудников с одной из ролей.
// Ставится после JWTMiddleware.
func RequireRole(roles ...models.AdminRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(string(AdminRoleKey)).(models.AdminRole)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin not found in context")
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// extractTokenFromHeader извлекает токен из заголовка Authorization.
func extractTokenFromHeader(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Проверка формата "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}

	return ""
}

// extractTokenFromCookie извлекает токен из cookie.
func extractTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie("Authorization")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetAdminIDFromContext извлекает ID сотрудника из контекста.
func GetAdminIDFromContext(c echo.Context) (uuid.UUID, error) {
	adminID, ok := c.Get(string(AdminIDKey)).(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "admin not found in context")
	}
	return adminID, nil
}

// GetAdminRoleFromContext извлекает роль сотрудника из контекста.
func GetAdminRoleFromContext(c echo.Context) (models.AdminRole, error) {
	role, ok := c.Get(string(AdminRoleKey)).(models.AdminRole)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "admin not found in context")
	}
	return role, nil
}
