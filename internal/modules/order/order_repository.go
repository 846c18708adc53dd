package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"food-delivery/internal/database"
	"food-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order repository. Every
// mutation is a compare-and-set on the order status; a miss is reported as
// models.ErrInvalidTransition (or models.ErrConflict for cashout).
type RepositoryInterface interface {
	Create(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	// Cancel moves the order from status from to cancelled and, in the same
	// transaction, frees riderID when it is non-empty.
	Cancel(ctx context.Context, orderID string, from models.OrderStatus, riderID string) (*models.Order, error)
	// Assign records the rider on a not_assigned order and marks the rider
	// in_delivery. The rider must exist and be active and available.
	Assign(ctx context.Context, orderID, riderID string) (*models.Order, error)
	MarkPicked(ctx context.Context, orderID, riderEmail string) (*models.Order, error)
	// MarkDelivered completes the order and frees the rider. The rider must be
	// in_delivery or the whole change is rolled back.
	MarkDelivered(ctx context.Context, orderID, riderEmail string) (*models.Order, error)
	Cashout(ctx context.Context, orderID, riderEmail string) (*models.Order, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const orderColumns = `id, customer_name, customer_email, customer_phone, district, thana, region,
	items, total, delivery_charge, status, payment_status, cashout_status,
	rider_id, rider_name, rider_email,
	placed_at, assigned_at, picked_at, delivered_at, cancelled_at, paid_at, cashed_out_at`

// ScanOrder scans a row selected with orderColumns.
func ScanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o     models.Order
		items []byte
	)
	err := row.Scan(
		&o.ID,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.Address.District,
		&o.Customer.Address.Thana,
		&o.Customer.Address.Region,
		&items,
		&o.Total,
		&o.DeliveryCharge,
		&o.Status,
		&o.PaymentStatus,
		&o.CashoutStatus,
		&o.RiderID,
		&o.RiderName,
		&o.RiderEmail,
		&o.PlacedAt,
		&o.AssignedAt,
		&o.PickedAt,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.PaidAt,
		&o.CashedOutAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	return &o, nil
}

// Create inserts a new order in not_assigned / unpaid / pending.
func (r *Repository) Create(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	query := `
		INSERT INTO orders (customer_name, customer_email, customer_phone, district, thana, region, items, total, delivery_charge)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns
	c := req.Customer
	o, err := ScanOrder(r.db.QueryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.Address.District, c.Address.Thana, c.Address.Region,
		items, req.Total, req.DeliveryCharge))
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return o, nil
}

// FindByID retrieves a single order by its ID.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := ScanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return o, nil
}

// casMiss reports a guarded update whose RETURNING matched no row as an
// invalid transition.
func casMiss(o *models.Order, err error) (*models.Order, error) {
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidTransition
	}
	return o, err
}

func (r *Repository) Cancel(ctx context.Context, orderID string, from models.OrderStatus, riderID string) (*models.Order, error) {
	var cancelled *models.Order
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE orders
			SET status = 'cancelled', cancelled_at = NOW(), rider_id = NULL, rider_name = NULL, rider_email = NULL
			WHERE id = $1 AND status = $2
			RETURNING ` + orderColumns
		o, err := casMiss(ScanOrder(tx.QueryRow(ctx, query, orderID, from)))
		if err != nil {
			return err
		}
		if riderID != "" {
			_, err = tx.Exec(ctx,
				`UPDATE riders SET work_status = 'available' WHERE id = $1 AND work_status = 'in_delivery'`, riderID)
			if err != nil {
				return fmt.Errorf("release rider: %w", err)
			}
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository.Cancel: %w", err)
	}
	return cancelled, nil
}

func (r *Repository) Assign(ctx context.Context, orderID, riderID string) (*models.Order, error) {
	var assigned *models.Order
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			name, email string
			status      models.RiderStatus
			work        models.WorkStatus
		)
		err := tx.QueryRow(ctx,
			`SELECT name, email, status, work_status FROM riders WHERE id = $1 FOR UPDATE`, riderID).
			Scan(&name, &email, &status, &work)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("rider %s: %w", riderID, models.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if status != models.RiderActive || work != models.WorkAvailable {
			return fmt.Errorf("%w: rider is %s and %s", models.ErrConflict, status, work)
		}

		query := `
			UPDATE orders
			SET status = 'assigned', assigned_at = NOW(), rider_id = $2, rider_name = $3, rider_email = $4
			WHERE id = $1 AND status = 'not_assigned'
			RETURNING ` + orderColumns
		o, err := casMiss(ScanOrder(tx.QueryRow(ctx, query, orderID, riderID, name, email)))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE riders SET work_status = 'in_delivery' WHERE id = $1`, riderID); err != nil {
			return fmt.Errorf("occupy rider: %w", err)
		}
		assigned = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository.Assign: %w", err)
	}
	return assigned, nil
}

func (r *Repository) MarkPicked(ctx context.Context, orderID, riderEmail string) (*models.Order, error) {
	query := `
		UPDATE orders SET status = 'picked', picked_at = NOW()
		WHERE id = $1 AND status = 'assigned' AND lower(rider_email) = lower($2)
		RETURNING ` + orderColumns
	o, err := casMiss(ScanOrder(r.db.QueryRow(ctx, query, orderID, riderEmail)))
	if err != nil {
		return nil, fmt.Errorf("repository.MarkPicked: %w", err)
	}
	return o, nil
}

func (r *Repository) MarkDelivered(ctx context.Context, orderID, riderEmail string) (*models.Order, error) {
	var delivered *models.Order
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE orders SET status = 'delivered', delivered_at = NOW()
			WHERE id = $1 AND status = 'picked' AND lower(rider_email) = lower($2)
			RETURNING ` + orderColumns
		o, err := casMiss(ScanOrder(tx.QueryRow(ctx, query, orderID, riderEmail)))
		if err != nil {
			return err
		}
		if o.RiderID == nil {
			return fmt.Errorf("%w: order has no rider record", models.ErrInvalidTransition)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE riders SET work_status = 'available' WHERE id = $1 AND work_status = 'in_delivery'`, *o.RiderID)
		if err != nil {
			return fmt.Errorf("release rider: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: rider was not in delivery", models.ErrInvalidTransition)
		}
		delivered = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository.MarkDelivered: %w", err)
	}
	return delivered, nil
}

func (r *Repository) Cashout(ctx context.Context, orderID, riderEmail string) (*models.Order, error) {
	query := `
		UPDATE orders SET cashout_status = 'cashed_out', cashed_out_at = NOW()
		WHERE id = $1 AND status = 'delivered' AND cashout_status = 'pending' AND lower(rider_email) = lower($2)
		RETURNING ` + orderColumns
	o, err := ScanOrder(r.db.QueryRow(ctx, query, orderID, riderEmail))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("repository.Cashout: %w: already cashed out", models.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("repository.Cashout: %w", err)
	}
	return o, nil
}
