// Package server assembles the echo application from the module handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"food-delivery/internal/auth"
	"food-delivery/internal/modules/food"
	"food-delivery/internal/modules/notification"
	"food-delivery/internal/modules/order"
	"food-delivery/internal/modules/payment"
	"food-delivery/internal/modules/rider"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Orders        *order.Handler
	Riders        *rider.Handler
	Payments      *payment.Handler
	Notifications *notification.Handler
	Foods         *food.Handler
}

type Options struct {
	JWTSecret    string
	ClientOrigin string
}

// NewRouter wires middleware, the public routes and the token-protected group.
func NewRouter(opts Options, h Handlers, db Pinger, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{opts.ClientOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	e.GET("/health", health(db))

	h.Payments.RegisterCallbacks(e)

	api := e.Group("", auth.Middleware(opts.JWTSecret))
	h.Orders.RegisterRoutes(api)
	h.Riders.RegisterRoutes(api)
	h.Payments.RegisterRoutes(api)
	h.Notifications.RegisterRoutes(api)
	h.Foods.RegisterRoutes(e, api)

	return e
}

func health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
