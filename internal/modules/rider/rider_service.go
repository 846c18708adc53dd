// Package rider manages rider applications, approval and the rider
// work_status that the order lifecycle toggles.
package rider

import (
	"context"
	"fmt"

	"food-delivery/internal/models"
	"food-delivery/internal/modules/notification"

	"go.uber.org/zap"
)

// ServiceInterface lists every rider operation exposed to the handler.
type ServiceInterface interface {
	Apply(ctx context.Context, caller models.Caller, app models.RiderApplication) (*models.Rider, error)
	ListPending(ctx context.Context, caller models.Caller) ([]*models.Rider, error)
	ListAvailable(ctx context.Context, caller models.Caller, thana string) ([]*models.Rider, error)
	Approve(ctx context.Context, caller models.Caller, riderID string) (*models.Rider, error)
	Delete(ctx context.Context, caller models.Caller, riderID string) error
	Reconcile(ctx context.Context) (models.ReconcileResult, error)
	Earnings(ctx context.Context, caller models.Caller) (models.RiderEarnings, error)
}

// Notifier receives the rider approval event.
type Notifier interface {
	Publish(ctx context.Context, ev notification.Event)
}

type Service struct {
	repo     RepositoryInterface
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo RepositoryInterface, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func requireAdmin(caller models.Caller) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return nil
}

// Apply files an application for the caller's own email. Existing riders
// and repeat applicants get models.ErrConflict.
func (s *Service) Apply(ctx context.Context, caller models.Caller, app models.RiderApplication) (*models.Rider, error) {
	if caller.IsRider() {
		return nil, fmt.Errorf("%w: You have already applied.", models.ErrConflict)
	}
	if app.Name == "" || app.Phone == "" || app.District == "" || app.Thana == "" || app.Region == "" {
		return nil, fmt.Errorf("%w: name, phone and full address are required", models.ErrValidation)
	}
	rider, err := s.repo.Create(ctx, caller.Email, app)
	if err != nil {
		return nil, fmt.Errorf("service.Apply: %w", err)
	}
	return rider, nil
}

func (s *Service) ListPending(ctx context.Context, caller models.Caller) ([]*models.Rider, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx)
}

// ListAvailable returns the riders an admin can dispatch, optionally in one thana.
func (s *Service) ListAvailable(ctx context.Context, caller models.Caller, thana string) ([]*models.Rider, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.ListAvailable(ctx, thana)
}

// Approve activates the rider, promotes the linked user and tells the rider.
func (s *Service) Approve(ctx context.Context, caller models.Caller, riderID string) (*models.Rider, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	rider, err := s.repo.Approve(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("service.Approve: %w", err)
	}
	s.notifier.Publish(ctx, notification.Event{
		Kind:      notification.EventRiderApproved,
		RelatedID: rider.ID,
		Rider:     &notification.Participant{Name: rider.Name, Email: rider.Email},
	})
	return rider, nil
}

func (s *Service) Delete(ctx context.Context, caller models.Caller, riderID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, riderID); err != nil {
		return fmt.Errorf("service.Delete: %w", err)
	}
	return nil
}

// Reconcile rebuilds work_status from active assignments. It is run at
// startup and can be triggered by an admin.
func (s *Service) Reconcile(ctx context.Context) (models.ReconcileResult, error) {
	res, err := s.repo.ReconcileWorkStatus(ctx)
	if err != nil {
		return models.ReconcileResult{}, fmt.Errorf("service.Reconcile: %w", err)
	}
	if res.Released > 0 || res.Occupied > 0 {
		s.logger.Warn("rider work status drifted from orders",
			zap.Int64("released", res.Released),
			zap.Int64("occupied", res.Occupied))
	}
	return res, nil
}

// Earnings summarises the caller's own deliveries and cashouts.
func (s *Service) Earnings(ctx context.Context, caller models.Caller) (models.RiderEarnings, error) {
	if !caller.IsRider() {
		return models.RiderEarnings{}, fmt.Errorf("%w: rider role required", models.ErrForbidden)
	}
	deliveries, err := s.repo.ListDeliveries(ctx, caller.Email)
	if err != nil {
		return models.RiderEarnings{}, fmt.Errorf("service.Earnings: %w", err)
	}
	return models.SummarizeEarnings(deliveries), nil
}
