package order

import (
	"context"
	"fmt"
	"strings"

	"food-delivery/internal/models"
	"food-delivery/internal/modules/notification"

	"go.uber.org/zap"
)

// Notifier receives one event per committed transition.
type Notifier interface {
	Publish(ctx context.Context, ev notification.Event)
}

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	PlaceOrder(ctx context.Context, caller models.Caller, req models.PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error)
	CancelOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error)
	AssignRider(ctx context.Context, caller models.Caller, orderID string, req models.AssignRiderRequest) (*models.Order, error)
	MarkPicked(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error)
	MarkDelivered(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error)
	Cashout(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error)
}

// Service implements the order lifecycle. Validation and role checks run
// before any write; notifications are published after the write commits.
type Service struct {
	repo     RepositoryInterface
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func validatePlaceOrder(req models.PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", models.ErrValidation)
	}
	for _, it := range req.Items {
		if it.FoodID == "" || it.Quantity <= 0 {
			return fmt.Errorf("%w: every item needs a food id and a positive quantity", models.ErrValidation)
		}
	}
	c := req.Customer
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: customer email is required", models.ErrValidation)
	}
	if c.Address.District == "" || c.Address.Thana == "" || c.Address.Region == "" {
		return fmt.Errorf("%w: delivery address is incomplete", models.ErrValidation)
	}
	if req.Total < 0 || req.DeliveryCharge < 0 {
		return fmt.Errorf("%w: amounts must not be negative", models.ErrValidation)
	}
	return nil
}

// PlaceOrder creates a not_assigned, unpaid order for the caller.
func (s *Service) PlaceOrder(ctx context.Context, caller models.Caller, req models.PlaceOrderRequest) (*models.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.Is(req.Customer.Email) {
		return nil, fmt.Errorf("%w: orders can only be placed for yourself", models.ErrForbidden)
	}
	req.Customer.Email = models.NormalizeEmail(req.Customer.Email)

	o, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceOrder: %w", err)
	}
	s.publish(ctx, notification.EventOrderPlaced, o, nil)
	return o, nil
}

// GetOrder is visible to the owner, the admin and the assigned rider.
func (s *Service) GetOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrder: %w", err)
	}
	if caller.IsAdmin() || caller.Is(o.Customer.Email) || o.IsAssignedTo(caller.Email) {
		return o, nil
	}
	return nil, models.ErrNotFound
}

func (s *Service) CancelOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.CancelOrder: %w", err)
	}
	if !caller.IsAdmin() && !caller.Is(o.Customer.Email) {
		return nil, fmt.Errorf("%w: only the customer or an admin may cancel", models.ErrForbidden)
	}
	if !CanTransition(o.Status, models.OrderCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", models.ErrInvalidTransition, o.Status)
	}

	var riderID string
	var released *notification.Participant
	if o.RiderID != nil {
		riderID = *o.RiderID
		released = riderOf(o)
	}
	cancelled, err := s.repo.Cancel(ctx, orderID, o.Status, riderID)
	if err != nil {
		return nil, fmt.Errorf("service.CancelOrder: %w", err)
	}
	s.publish(ctx, notification.EventOrderCancelled, cancelled, released)
	return cancelled, nil
}

func (s *Service) AssignRider(ctx context.Context, caller models.Caller, orderID string, req models.AssignRiderRequest) (*models.Order, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: only an admin may assign riders", models.ErrForbidden)
	}
	if req.RiderID == "" {
		return nil, fmt.Errorf("%w: rider id is required", models.ErrValidation)
	}
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.AssignRider: %w", err)
	}
	if !CanTransition(o.Status, models.OrderAssigned) {
		return nil, fmt.Errorf("%w: order is already %s", models.ErrInvalidTransition, o.Status)
	}

	assigned, err := s.repo.Assign(ctx, orderID, req.RiderID)
	if err != nil {
		return nil, fmt.Errorf("service.AssignRider: %w", err)
	}
	if req.RiderEmail != "" && assigned.RiderEmail != nil && !strings.EqualFold(req.RiderEmail, *assigned.RiderEmail) {
		s.logger.Info("assign request rider email differs from rider record",
			zap.String("order_id", orderID),
			zap.String("requested", req.RiderEmail),
			zap.String("stored", *assigned.RiderEmail))
	}
	s.publish(ctx, notification.EventRiderAssigned, assigned, riderOf(assigned))
	return assigned, nil
}

// assignedOrder loads the order and checks the caller is its rider.
func (s *Service) assignedOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	if !caller.IsRider() {
		return nil, fmt.Errorf("%w: rider role required", models.ErrForbidden)
	}
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsAssignedTo(caller.Email) {
		return nil, fmt.Errorf("%w: order is not assigned to you", models.ErrForbidden)
	}
	return o, nil
}

func (s *Service) MarkPicked(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	o, err := s.assignedOrder(ctx, caller, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.MarkPicked: %w", err)
	}
	if !CanTransition(o.Status, models.OrderPicked) {
		return nil, fmt.Errorf("%w: cannot pick a %s order", models.ErrInvalidTransition, o.Status)
	}
	picked, err := s.repo.MarkPicked(ctx, orderID, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("service.MarkPicked: %w", err)
	}
	s.publish(ctx, notification.EventOrderPicked, picked, riderOf(picked))
	return picked, nil
}

func (s *Service) MarkDelivered(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	o, err := s.assignedOrder(ctx, caller, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.MarkDelivered: %w", err)
	}
	if !CanTransition(o.Status, models.OrderDelivered) {
		return nil, fmt.Errorf("%w: cannot deliver a %s order", models.ErrInvalidTransition, o.Status)
	}
	delivered, err := s.repo.MarkDelivered(ctx, orderID, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("service.MarkDelivered: %w", err)
	}
	s.publish(ctx, notification.EventOrderDelivered, delivered, riderOf(delivered))
	return delivered, nil
}

func (s *Service) Cashout(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	o, err := s.assignedOrder(ctx, caller, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.Cashout: %w", err)
	}
	if o.Status != models.OrderDelivered {
		return nil, fmt.Errorf("%w: order is %s, not delivered", models.ErrInvalidTransition, o.Status)
	}
	if o.CashoutStatus == models.CashoutCashedOut {
		return nil, fmt.Errorf("%w: earnings already cashed out", models.ErrConflict)
	}
	done, err := s.repo.Cashout(ctx, orderID, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("service.Cashout: %w", err)
	}
	s.publish(ctx, notification.EventOrderCashedOut, done, riderOf(done))
	return done, nil
}

func (s *Service) publish(ctx context.Context, kind notification.EventKind, o *models.Order, rider *notification.Participant) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, notification.Event{
		Kind:      kind,
		RelatedID: o.ID,
		Customer:  notification.Participant{Name: o.Customer.Name, Email: o.Customer.Email},
		Rider:     rider,
	})
}

func riderOf(o *models.Order) *notification.Participant {
	if o.RiderEmail == nil {
		return nil
	}
	p := &notification.Participant{Email: *o.RiderEmail}
	if o.RiderName != nil {
		p.Name = *o.RiderName
	}
	return p
}

