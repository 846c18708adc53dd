package rider

import (
	"context"
	"errors"
	"fmt"

	"food-delivery/internal/database"
	"food-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface holds every rider read and write the service needs.
type RepositoryInterface interface {
	// Create stores an application in pending / available. A second
	// application for the same email returns models.ErrConflict.
	Create(ctx context.Context, email string, app models.RiderApplication) (*models.Rider, error)
	FindByID(ctx context.Context, id string) (*models.Rider, error)
	ListPending(ctx context.Context) ([]*models.Rider, error)
	// ListAvailable returns active, available riders; thana narrows the result
	// when non-empty.
	ListAvailable(ctx context.Context, thana string) ([]*models.Rider, error)
	// Approve activates a pending rider and promotes the user's role to rider
	// in one transaction.
	Approve(ctx context.Context, id string) (*models.Rider, error)
	// Delete removes a rider that is not in delivery.
	Delete(ctx context.Context, id string) error
	// ReconcileWorkStatus recomputes work_status from orders that reference the
	// rider in assigned or picked.
	ReconcileWorkStatus(ctx context.Context) (models.ReconcileResult, error)
	// ListDeliveries returns every order currently carrying the rider's email.
	ListDeliveries(ctx context.Context, email string) ([]models.RiderDelivery, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const riderColumns = `id, name, email, phone, district, thana, region, status, work_status, applied_at, active_at`

func scanRider(row pgx.Row) (*models.Rider, error) {
	var r models.Rider
	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.District, &r.Thana, &r.Region,
		&r.Status, &r.WorkStatus, &r.AppliedAt, &r.ActiveAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan rider: %w", err)
	}
	return &r, nil
}

func (r *Repository) Create(ctx context.Context, email string, app models.RiderApplication) (*models.Rider, error) {
	const query = `
		INSERT INTO riders (name, email, phone, district, thana, region)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + riderColumns
	rider, err := scanRider(r.db.QueryRow(ctx, query, app.Name, email, app.Phone, app.District, app.Thana, app.Region))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("repository.Create: %w: You have already applied.", models.ErrConflict)
		}
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return rider, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Rider, error) {
	const query = `SELECT ` + riderColumns + ` FROM riders WHERE id = $1`
	rider, err := scanRider(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return rider, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*models.Rider, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	riders := []*models.Rider{}
	for rows.Next() {
		rider, err := scanRider(rows)
		if err != nil {
			return nil, err
		}
		riders = append(riders, rider)
	}
	return riders, rows.Err()
}

func (r *Repository) ListPending(ctx context.Context) ([]*models.Rider, error) {
	const query = `SELECT ` + riderColumns + ` FROM riders WHERE status = 'pending' ORDER BY applied_at`
	riders, err := r.list(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListPending: %w", err)
	}
	return riders, nil
}

func (r *Repository) ListAvailable(ctx context.Context, thana string) ([]*models.Rider, error) {
	const query = `
		SELECT ` + riderColumns + `
		FROM riders
		WHERE status = 'active' AND work_status = 'available' AND ($1 = '' OR thana = $1)
		ORDER BY active_at`
	riders, err := r.list(ctx, query, thana)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAvailable: %w", err)
	}
	return riders, nil
}

func (r *Repository) Approve(ctx context.Context, id string) (*models.Rider, error) {
	var approved *models.Rider
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const activate = `
			UPDATE riders
			SET status = 'active', work_status = 'available', active_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING ` + riderColumns
		rider, err := scanRider(tx.QueryRow(ctx, activate, id))
		if errors.Is(err, models.ErrNotFound) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM riders WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: rider is already active", models.ErrConflict)
			}
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		const promote = `
			INSERT INTO users (email, name, role) VALUES ($1, $2, 'rider')
			ON CONFLICT (email) DO UPDATE SET role = 'rider'`
		if _, err := tx.Exec(ctx, promote, rider.Email, rider.Name); err != nil {
			return fmt.Errorf("promote user: %w", err)
		}
		approved = rider
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository.Approve: %w", err)
	}
	return approved, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM riders WHERE id = $1 AND work_status <> 'in_delivery'`, id)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	return fmt.Errorf("repository.Delete: %w: rider is in delivery", models.ErrConflict)
}

func (r *Repository) ReconcileWorkStatus(ctx context.Context) (models.ReconcileResult, error) {
	var res models.ReconcileResult
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const release = `
			UPDATE riders r SET work_status = 'available'
			WHERE r.work_status = 'in_delivery'
			  AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.rider_id = r.id AND o.status IN ('assigned', 'picked'))`
		tag, err := tx.Exec(ctx, release)
		if err != nil {
			return err
		}
		res.Released = tag.RowsAffected()

		const occupy = `
			UPDATE riders r SET work_status = 'in_delivery'
			WHERE r.work_status = 'available'
			  AND EXISTS (SELECT 1 FROM orders o WHERE o.rider_id = r.id AND o.status IN ('assigned', 'picked'))`
		tag, err = tx.Exec(ctx, occupy)
		if err != nil {
			return err
		}
		res.Occupied = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return models.ReconcileResult{}, fmt.Errorf("repository.ReconcileWorkStatus: %w", err)
	}
	return res, nil
}

func (r *Repository) ListDeliveries(ctx context.Context, email string) ([]models.RiderDelivery, error) {
	const query = `
		SELECT status, cashout_status, delivery_charge, jsonb_array_length(items)
		FROM orders
		WHERE lower(rider_email) = lower($1)`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("repository.ListDeliveries: %w", err)
	}
	defer rows.Close()

	var out []models.RiderDelivery
	for rows.Next() {
		var d models.RiderDelivery
		if err := rows.Scan(&d.Status, &d.CashoutStatus, &d.DeliveryCharge, &d.ItemCount); err != nil {
			return nil, fmt.Errorf("repository.ListDeliveries: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListDeliveries: %w", err)
	}
	return out, nil
}
