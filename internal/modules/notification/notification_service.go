package notification

import (
	"context"
	"fmt"

	"food-delivery/internal/models"

	"go.uber.org/zap"
)

// Mailer mirrors direct notifications to email. It is optional.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ServiceInterface defines the contract for the notification service.
type ServiceInterface interface {
	Publish(ctx context.Context, ev Event)
	Broadcast(ctx context.Context, message, relatedID string)
	List(ctx context.Context, email string, page, limit int) (*models.NotificationPage, error)
	ReadAll(ctx context.Context, email string) (models.ReadAllResult, error)
}

type Service struct {
	repo       RepositoryInterface
	adminEmail string
	mailer     Mailer
	logger     *zap.Logger
}

// NewService wires the sink. mailer may be nil.
func NewService(repo RepositoryInterface, adminEmail string, mailer Mailer, logger *zap.Logger) *Service {
	return &Service{repo: repo, adminEmail: models.NormalizeEmail(adminEmail), mailer: mailer, logger: logger}
}

// Publish writes the notifications for ev. Failures are logged and dropped;
// the transition that produced ev has already committed, so the writes
// outlive a cancelled request.
func (s *Service) Publish(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)
	for _, n := range Fanout(ev, s.adminEmail) {
		if err := s.repo.Insert(ctx, &n); err != nil {
			s.logger.Warn("notification write failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("related_id", ev.RelatedID),
				zap.String("recipient", n.Email),
				zap.Error(err))
			continue
		}
		s.mirror(ctx, n)
	}
}

func (s *Service) mirror(ctx context.Context, n models.Notification) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, n.Email, "Order update", n.Message); err != nil {
		s.logger.Warn("notification email failed", zap.String("recipient", n.Email), zap.Error(err))
	}
}

// Broadcast stores one notification addressed to every user.
func (s *Service) Broadcast(ctx context.Context, message, relatedID string) {
	ctx = context.WithoutCancel(ctx)
	n := models.Notification{
		Type:      models.NotificationBroadcast,
		ReadBy:    []string{},
		Message:   message,
		RelatedID: relatedID,
	}
	if err := s.repo.Insert(ctx, &n); err != nil {
		s.logger.Warn("broadcast write failed", zap.String("related_id", relatedID), zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, email string, page, limit int) (*models.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := s.repo.ListFor(ctx, email, page, limit)
	if err != nil {
		return nil, fmt.Errorf("service.List: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service.List: %w", err)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &models.NotificationPage{Notifications: items, Total: total, Unread: unread}, nil
}

func (s *Service) ReadAll(ctx context.Context, email string) (models.ReadAllResult, error) {
	res, err := s.repo.MarkAllRead(ctx, email)
	if err != nil {
		return models.ReadAllResult{}, fmt.Errorf("service.ReadAll: %w", err)
	}
	return res, nil
}
