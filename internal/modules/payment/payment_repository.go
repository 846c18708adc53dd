package payment

import (
	"context"
	"errors"
	"fmt"

	"food-delivery/internal/database"
	"food-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is the payment ledger. The two Mark/Record writes also
// flip the order's payment_status in the same transaction.
type RepositoryInterface interface {
	CreatePending(ctx context.Context, p *models.Payment) error
	// FindPending returns models.ErrNotFound for unknown or already settled
	// transaction ids.
	FindPending(ctx context.Context, transactionID string) (*models.Payment, error)
	DeletePending(ctx context.Context, transactionID string) error
	// MarkGatewayPaid settles a pending gateway payment and marks its order
	// paid. The order status is left untouched.
	MarkGatewayPaid(ctx context.Context, transactionID string) (*models.Payment, error)
	// RecordDirect marks the order paid and stores a settled payment. An order
	// that is already paid yields models.ErrConflict, a cancelled one
	// models.ErrInvalidTransition.
	RecordDirect(ctx context.Context, p *models.Payment) (*models.Payment, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const paymentColumns = `id, order_id, email, name, amount, method, transaction_id, status, created_at, paid_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Email, &p.Name, &p.Amount, &p.Method,
		&p.TransactionID, &p.Status, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return &p, nil
}

func (r *Repository) CreatePending(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, email, name, amount, method, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, status, created_at`
	err := r.db.QueryRow(ctx, query, p.OrderID, p.Email, p.Name, p.Amount, p.Method, p.TransactionID).
		Scan(&p.ID, &p.Status, &p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("repository.CreatePending: %w: duplicate transaction id", models.ErrConflict)
		}
		return fmt.Errorf("repository.CreatePending: %w", err)
	}
	return nil
}

func (r *Repository) FindPending(ctx context.Context, transactionID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1 AND status = 'pending'`
	p, err := scanPayment(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, fmt.Errorf("repository.FindPending: %w", err)
	}
	return p, nil
}

func (r *Repository) DeletePending(ctx context.Context, transactionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM payments WHERE transaction_id = $1 AND status = 'pending'`, transactionID)
	if err != nil {
		return fmt.Errorf("repository.DeletePending: %w", err)
	}
	return nil
}

func (r *Repository) MarkGatewayPaid(ctx context.Context, transactionID string) (*models.Payment, error) {
	var settled *models.Payment
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		settle := `
			UPDATE payments SET status = 'payment done', paid_at = NOW()
			WHERE transaction_id = $1 AND status = 'pending'
			RETURNING ` + paymentColumns
		p, err := scanPayment(tx.QueryRow(ctx, settle, transactionID))
		if err != nil {
			return err
		}
		// payment_status only moves forward; a second settlement is a no-op.
		_, err = tx.Exec(ctx, `
			UPDATE orders SET payment_status = 'paid', paid_at = NOW()
			WHERE id = $1 AND payment_status = 'unpaid'`, p.OrderID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		settled = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository.MarkGatewayPaid: %w", err)
	}
	return settled, nil
}

func (r *Repository) RecordDirect(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	var recorded *models.Payment
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET payment_status = 'paid', paid_at = NOW()
			WHERE id = $1 AND payment_status = 'unpaid' AND status <> 'cancelled'`, p.OrderID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return guardMiss(ctx, tx, p.OrderID)
		}

		insert := `
			INSERT INTO payments (order_id, email, name, amount, method, transaction_id, status, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'payment done', NOW())
			RETURNING ` + paymentColumns
		saved, err := scanPayment(tx.QueryRow(ctx, insert, p.OrderID, p.Email, p.Name, p.Amount, p.Method, p.TransactionID))
		if err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate transaction id", models.ErrConflict)
			}
			return err
		}
		recorded = saved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository.RecordDirect: %w", err)
	}
	return recorded, nil
}

// guardMiss explains why the unpaid guard on an order matched nothing.
func guardMiss(ctx context.Context, tx pgx.Tx, orderID string) error {
	var status models.OrderStatus
	var paid models.PaymentStatus
	err := tx.QueryRow(ctx, `SELECT status, payment_status FROM orders WHERE id = $1`, orderID).Scan(&status, &paid)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}
	if paid == models.PaymentPaid {
		return fmt.Errorf("%w: Order already paid", models.ErrConflict)
	}
	return fmt.Errorf("%w: cannot pay for a %s order", models.ErrInvalidTransition, status)
}
