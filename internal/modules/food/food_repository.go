package food

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food-delivery/internal/database"
	"food-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryInterface interface {
	Create(ctx context.Context, req models.CreateFoodRequest) (*models.Food, error)
	FindByID(ctx context.Context, id string) (*models.Food, error)
	// Update applies the non-nil fields of req and returns the row as it was
	// before and after the change.
	Update(ctx context.Context, id string, req models.UpdateFoodRequest) (before, after *models.Food, err error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const foodColumns = `id, name, price, discount, description, image, available, added_at, updated_at`

func scanFood(row pgx.Row) (*models.Food, error) {
	var f models.Food
	err := row.Scan(&f.ID, &f.Name, &f.Price, &f.Discount, &f.Description, &f.Image, &f.Available, &f.AddedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan food: %w", err)
	}
	return &f, nil
}

func (r *Repository) Create(ctx context.Context, req models.CreateFoodRequest) (*models.Food, error) {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	query := `
		INSERT INTO foods (name, price, discount, description, image, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + foodColumns
	f, err := scanFood(r.db.QueryRow(ctx, query,
		strings.TrimSpace(req.Name), req.Price, req.Discount, strings.TrimSpace(req.Description), req.Image, available))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("repository.Create: %w: a food with this name already exists", models.ErrConflict)
		}
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return f, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Food, error) {
	f, err := scanFood(r.db.QueryRow(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return f, nil
}

func (r *Repository) Update(ctx context.Context, id string, req models.UpdateFoodRequest) (*models.Food, *models.Food, error) {
	var before, after *models.Food
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		before, err = scanFood(tx.QueryRow(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		query := `
			UPDATE foods SET
				name        = COALESCE($2, name),
				price       = COALESCE($3, price),
				discount    = COALESCE($4, discount),
				description = COALESCE($5, description),
				image       = COALESCE($6, image),
				available   = COALESCE($7, available),
				updated_at  = NOW()
			WHERE id = $1
			RETURNING ` + foodColumns
		after, err = scanFood(tx.QueryRow(ctx, query, id,
			req.Name, req.Price, req.Discount, req.Description, req.Image, req.Available))
		if err != nil && database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: a food with this name already exists", models.ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("repository.Update: %w", err)
	}
	return before, after, nil
}
