// Package food is the catalog lookup used by the storefront. Catalog changes
// customers care about are announced as broadcast notifications.
package food

import (
	"context"
	"fmt"

	"food-delivery/internal/models"
)

type ServiceInterface interface {
	Create(ctx context.Context, req models.CreateFoodRequest) (*models.Food, error)
	Get(ctx context.Context, id string) (*models.Food, error)
	Update(ctx context.Context, id string, req models.UpdateFoodRequest) (*models.Food, error)
}

// Broadcaster stores one notification visible to every user.
type Broadcaster interface {
	Broadcast(ctx context.Context, message, relatedID string)
}

type Service struct {
	repo        RepositoryInterface
	broadcaster Broadcaster
}

func NewService(repo RepositoryInterface, broadcaster Broadcaster) *Service {
	return &Service{repo: repo, broadcaster: broadcaster}
}

func (s *Service) Create(ctx context.Context, req models.CreateFoodRequest) (*models.Food, error) {
	f, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	s.broadcaster.Broadcast(ctx, fmt.Sprintf("New food item: %s.", f.Name), f.ID)
	return f, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Food, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.Get: %w", err)
	}
	return f, nil
}

// Update announces the change only when the discount went up.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateFoodRequest) (*models.Food, error) {
	before, after, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	if after.Discount > before.Discount {
		s.broadcaster.Broadcast(ctx, fmt.Sprintf("Discount added on food item: %s.", before.Name), id)
	}
	return after, nil
}
