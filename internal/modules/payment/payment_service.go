// Package payment reconciles gateway and card payments with their orders.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"food-delivery/internal/models"
	"food-delivery/internal/modules/notification"
	provider "food-delivery/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceInterface defines the contract for the payment service.
type ServiceInterface interface {
	InitiateGatewaySession(ctx context.Context, caller models.Caller, req models.GatewaySessionRequest) (*models.GatewaySessionResponse, error)
	OnGatewaySuccess(ctx context.Context, transactionID, validationID string) error
	OnGatewayFailure(ctx context.Context, transactionID string) error
	OnGatewayCancel(ctx context.Context, transactionID string) error
	CreateDirectPaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error)
	RecordDirectPayment(ctx context.Context, caller models.Caller, req models.DirectPaymentRequest) (*models.Payment, error)
}

// OrderReader is the slice of the order repository payments need.
type OrderReader interface {
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
}

type Notifier interface {
	Publish(ctx context.Context, ev notification.Event)
}

// Callbacks are the absolute URLs handed to the gateway for each outcome.
type Callbacks struct {
	Success string
	Fail    string
	Cancel  string
	IPN     string
}

type Service struct {
	repo      RepositoryInterface
	orders    OrderReader
	gateway   provider.GatewayInterface
	cards     provider.CardProcessorInterface
	notifier  Notifier
	callbacks Callbacks
	currency  string
	logger    *zap.Logger
}

func NewService(
	repo RepositoryInterface,
	orders OrderReader,
	gateway provider.GatewayInterface,
	cards provider.CardProcessorInterface,
	notifier Notifier,
	callbacks Callbacks,
	currency string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		gateway:   gateway,
		cards:     cards,
		notifier:  notifier,
		callbacks: callbacks,
		currency:  currency,
		logger:    logger,
	}
}

// payableOrder loads an order the caller may pay for. Orders owned by
// someone else are reported as missing.
func (s *Service) payableOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.Is(o.Customer.Email) {
		return nil, models.ErrNotFound
	}
	if o.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: Order already paid", models.ErrConflict)
	}
	if o.Status == models.OrderCancelled {
		return nil, fmt.Errorf("%w: cannot pay for a cancelled order", models.ErrInvalidTransition)
	}
	return o, nil
}

// InitiateGatewaySession records a pending payment for the order total and
// opens a hosted checkout for it.
func (s *Service) InitiateGatewaySession(ctx context.Context, caller models.Caller, req models.GatewaySessionRequest) (*models.GatewaySessionResponse, error) {
	o, err := s.payableOrder(ctx, caller, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("service.InitiateGatewaySession: %w", err)
	}

	p := &models.Payment{
		OrderID:       o.ID,
		Email:         req.Email,
		Name:          req.Name,
		Amount:        o.Total,
		Method:        models.MethodSSLCommerz,
		TransactionID: uuid.NewString(),
	}
	if err := s.repo.CreatePending(ctx, p); err != nil {
		return nil, fmt.Errorf("service.InitiateGatewaySession: %w", err)
	}

	phone := req.Phone
	if phone == "" {
		phone = o.Customer.Phone
	}
	page, err := s.gateway.InitSession(ctx, provider.Session{
		TransactionID: p.TransactionID,
		Amount:        o.Total,
		Currency:      s.currency,
		SuccessURL:    s.callbacks.Success,
		FailURL:       s.callbacks.Fail,
		CancelURL:     s.callbacks.Cancel,
		IPNURL:        s.callbacks.IPN,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: phone,
		District:      o.Customer.Address.District,
		Thana:         o.Customer.Address.Thana,
		Region:        o.Customer.Address.Region,
	})
	if err != nil {
		if delErr := s.repo.DeletePending(ctx, p.TransactionID); delErr != nil {
			s.logger.Error("failed to drop pending payment", zap.String("transaction_id", p.TransactionID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %s", models.ErrGateway, err.Error())
	}
	return &models.GatewaySessionResponse{URL: page}, nil
}

// OnGatewaySuccess validates the callback with the gateway and settles the
// payment only when the gateway vouches for this transaction at the pending
// amount. A gateway that reports this transaction as unpaid drops the pending
// record; a validation for some other payment leaves it alone.
func (s *Service) OnGatewaySuccess(ctx context.Context, transactionID, validationID string) error {
	pending, err := s.repo.FindPending(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("service.OnGatewaySuccess: %w", err)
	}

	v, err := s.gateway.Validate(ctx, validationID)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrGateway, err.Error())
	}
	if !v.Settles(transactionID, pending.Amount, s.currency) {
		fields := []zap.Field{
			zap.String("transaction_id", transactionID),
			zap.String("status", v.Status),
			zap.String("validated_transaction_id", v.TransactionID),
			zap.Float64("validated_amount", v.Amount),
			zap.String("validated_currency", v.Currency),
		}
		if v.TransactionID != transactionID || v.Status == provider.ValidStatus {
			s.logger.Warn("gateway validation does not match pending payment", fields...)
			return fmt.Errorf("%w: Invalid payment", models.ErrValidation)
		}
		s.logger.Info("gateway payment not valid", fields...)
		if err := s.repo.DeletePending(ctx, transactionID); err != nil {
			return fmt.Errorf("service.OnGatewaySuccess: %w", err)
		}
		return fmt.Errorf("%w: Invalid payment", models.ErrValidation)
	}

	settled, err := s.repo.MarkGatewayPaid(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("service.OnGatewaySuccess: %w", err)
	}
	s.publishReceived(ctx, settled)
	return nil
}

func (s *Service) OnGatewayFailure(ctx context.Context, transactionID string) error {
	if err := s.repo.DeletePending(ctx, transactionID); err != nil {
		return fmt.Errorf("service.OnGatewayFailure: %w", err)
	}
	return nil
}

func (s *Service) OnGatewayCancel(ctx context.Context, transactionID string) error {
	if err := s.repo.DeletePending(ctx, transactionID); err != nil {
		return fmt.Errorf("service.OnGatewayCancel: %w", err)
	}
	return nil
}

// CreateDirectPaymentIntent converts the amount to minor units and asks the
// card processor for a client secret.
func (s *Service) CreateDirectPaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	minor := int64(math.Round(req.Amount * 100))
	if minor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	secret, err := s.cards.CreatePaymentIntent(ctx, minor)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrGateway, err.Error())
	}
	return &models.PaymentIntentResponse{ClientSecret: secret}, nil
}

// RecordDirectPayment stores a payment the client already confirmed and
// marks the order paid.
func (s *Service) RecordDirectPayment(ctx context.Context, caller models.Caller, req models.DirectPaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 || req.TransactionID == "" || req.Method == "" {
		return nil, fmt.Errorf("%w: amount, method and transaction id are required", models.ErrValidation)
	}
	if _, err := s.payableOrder(ctx, caller, req.OrderID); err != nil {
		return nil, fmt.Errorf("service.RecordDirectPayment: %w", err)
	}

	p, err := s.repo.RecordDirect(ctx, &models.Payment{
		OrderID:       req.OrderID,
		Email:         req.Email,
		Name:          req.Name,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("service.RecordDirectPayment: %w: Order not found", models.ErrNotFound)
		}
		return nil, fmt.Errorf("service.RecordDirectPayment: %w", err)
	}
	s.publishReceived(ctx, p)
	return p, nil
}

func (s *Service) publishReceived(ctx context.Context, p *models.Payment) {
	s.notifier.Publish(ctx, notification.Event{
		Kind:      notification.EventPaymentReceived,
		RelatedID: p.OrderID,
		Customer:  notification.Participant{Name: p.Name, Email: p.Email},
	})
}
