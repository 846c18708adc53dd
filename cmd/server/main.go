// Command server runs the food-delivery API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/database"
	"food-delivery/internal/modules/food"
	"food-delivery/internal/modules/notification"
	"food-delivery/internal/modules/order"
	"food-delivery/internal/modules/payment"
	"food-delivery/internal/modules/rider"
	"food-delivery/internal/server"
	"food-delivery/pkg/mailer"
	provider "food-delivery/pkg/payment"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run() error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var mail notification.Mailer
	if cfg.SESSender != "" {
		ses, err := mailer.NewSES(ctx, cfg.AWSRegion, cfg.SESSender)
		if err != nil {
			return err
		}
		mail = ses
	} else {
		logger.Info("SES_SENDER not set, notifications are not mirrored to email")
	}

	notifications := notification.NewService(notification.NewRepository(pool), cfg.AdminEmail, mail, logger)

	orderRepo := order.NewRepository(pool)
	orders := order.NewService(orderRepo, notifications, logger)
	riders := rider.NewService(rider.NewRepository(pool), notifications, logger)
	payments := payment.NewService(
		payment.NewRepository(pool),
		orderRepo,
		provider.NewSSLCommerz(cfg.SSLCommerzBaseURL, cfg.SSLCommerzStoreID, cfg.SSLCommerzStorePassword),
		provider.NewStripeService(cfg.StripeAPIKey, cfg.Currency, nil),
		notifications,
		payment.Callbacks{
			Success: cfg.GatewayCallbackURL("/payments/success-payment"),
			Fail:    cfg.GatewayCallbackURL("/payments/fail-payment"),
			Cancel:  cfg.GatewayCallbackURL("/payments/cancel-payment"),
			IPN:     cfg.GatewayCallbackURL("/payments/success-payment"),
		},
		cfg.Currency,
		logger,
	)
	foods := food.NewService(food.NewRepository(pool), notifications)

	// Work status may have drifted if a previous process died mid-request.
	if _, err := riders.Reconcile(ctx); err != nil {
		logger.Warn("rider reconciliation failed", zap.Error(err))
	}

	e := server.NewRouter(
		server.Options{JWTSecret: cfg.JWTSecret, ClientOrigin: cfg.ClientOrigin},
		server.Handlers{
			Orders:        order.NewHandler(orders),
			Riders:        rider.NewHandler(riders),
			Payments:      payment.NewHandler(payments, cfg.OrderTrackingURL),
			Notifications: notification.NewHandler(notifications),
			Foods:         food.NewHandler(foods),
		},
		pool,
		logger,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.ServerPort
		logger.Info("starting server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
