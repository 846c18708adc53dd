// Package auth turns a verified access token into a typed models.Caller and
// gates routes by role.
package auth

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"food-delivery/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	tokenContextKey  = "token"
	callerContextKey = "caller"
)

// Claims are minted by the identity provider. Only email and role are read here.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Middleware verifies the bearer token (or the "token" cookie) and stores the
// caller on the echo context.
func Middleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		ContextKey:  tokenContextKey,
		TokenLookup: "header:Authorization:Bearer ,cookie:token",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*Claims); ok && claims.Email != "" {
				c.Set(callerContextKey, models.Caller{Email: models.NormalizeEmail(claims.Email), Role: claims.Role})
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "unauthorized access"})
		},
	})
}

// Require rejects callers whose role is not one of roles. With no roles any
// authenticated caller passes.
func Require(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "unauthorized access"})
			}
			if len(roles) > 0 && !slices.Contains(roles, caller.Role) {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "forbidden access"})
			}
			return next(c)
		}
	}
}

func CallerFrom(c echo.Context) (models.Caller, bool) {
	caller, ok := c.Get(callerContextKey).(models.Caller)
	return caller, ok
}

// SignToken issues an HS256 token. It exists for local tooling and tests;
// production tokens come from the identity provider.
func SignToken(secret, email string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.SignToken: %w", err)
	}
	return signed, nil
}
