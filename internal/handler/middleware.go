package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/metrics"
	"github.com/sumire/charity/internal/service"
)

const contextKeyClaims = "charity.claims"

// RequestID assigns every request a UUID unless the caller sent one.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLogger logs each HTTP request with structured fields and records
// its latency.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			took := time.Since(start)
			status := c.Response().Status
			m.ObserveRequest(c.Request().Method, c.Path(), status, took)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", took),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	}
}

// JWTAuth requires a valid Bearer access token and stores its claims.
func JWTAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return domain.NewAppError(domain.CodeUnauthorized, "authentication is required")
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				return err
			}

			c.Set(contextKeyClaims, claims)
			return next(c)
		}
	}
}

// OptionalJWT stores claims when a valid token is present and lets
// anonymous requests through.
func OptionalJWT(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				if claims, err := auth.ValidateToken(token); err == nil {
					c.Set(contextKeyClaims, claims)
				}
			}
			return next(c)
		}
	}
}

// RequireRole rejects authenticated callers without role. It must run after
// JWTAuth.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return domain.NewAppError(domain.CodeUnauthorized, "authentication is required")
			}
			if claims.Role != role {
				return domain.Forbidden("insufficient permissions")
			}
			return next(c)
		}
	}
}

// GetClaims extracts the authenticated caller from echo context.
func GetClaims(c echo.Context) (*service.Claims, bool) {
	claims, ok := c.Get(contextKeyClaims).(*service.Claims)
	return claims, ok
}

// GetUserID extracts the authenticated user ID from echo context.
func GetUserID(c echo.Context) (string, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

func isAdmin(c echo.Context) bool {
	claims, ok := GetClaims(c)
	return ok && claims.Role == domain.RoleAdmin
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
