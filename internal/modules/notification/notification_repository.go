package notification

import (
	"context"
	"fmt"

	"food-delivery/internal/database"
	"food-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the notification repository.
type RepositoryInterface interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListFor(ctx context.Context, email string, page, limit int) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, email string) (int, error)
	MarkAllRead(ctx context.Context, email string) (models.ReadAllResult, error)
}

type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, n *models.Notification) error {
	readBy := n.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	query := `
		INSERT INTO notifications (type, email, is_read, read_by, message, related_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, n.Type, n.Email, n.IsRead, readBy, n.Message, n.RelatedID).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository.Insert: %w", err)
	}
	return nil
}

// ListFor returns the caller's direct notifications and every broadcast,
// newest first. Broadcast IsRead reflects membership of email in read_by.
// The total counts every visible notification, whatever the page.
func (r *Repository) ListFor(ctx context.Context, email string, page, limit int) ([]models.Notification, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*) FROM notifications
		WHERE (type = 'direct' AND email = $1) OR type = 'broadcast'`
	if err := r.db.QueryRow(ctx, countQuery, email).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListFor: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query := `
		SELECT id, type, COALESCE(email, ''),
		       CASE WHEN type = 'broadcast' THEN $1 = ANY(read_by) ELSE is_read END,
		       message, related_id, created_at
		FROM notifications
		WHERE (type = 'direct' AND email = $1) OR type = 'broadcast'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, email, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListFor: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Email, &n.IsRead, &n.Message, &n.RelatedID, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("repository.ListFor: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListFor: %w", err)
	}
	return out, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, email string) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE (type = 'direct' AND email = $1 AND NOT is_read)
		   OR (type = 'broadcast' AND NOT ($1 = ANY(read_by)))`
	var n int
	if err := r.db.QueryRow(ctx, query, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository.CountUnread: %w", err)
	}
	return n, nil
}

// MarkAllRead flips unread direct notifications and joins email to every
// broadcast read_by set that lacks it. Running it twice changes nothing.
func (r *Repository) MarkAllRead(ctx context.Context, email string) (models.ReadAllResult, error) {
	var res models.ReadAllResult
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE notifications SET is_read = TRUE WHERE type = 'direct' AND email = $1 AND NOT is_read`, email)
		if err != nil {
			return err
		}
		res.Direct = tag.RowsAffected()

		tag, err = tx.Exec(ctx,
			`UPDATE notifications SET read_by = array_append(read_by, $1)
			 WHERE type = 'broadcast' AND NOT ($1 = ANY(read_by))`, email)
		if err != nil {
			return err
		}
		res.Broadcast = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return models.ReadAllResult{}, fmt.Errorf("repository.MarkAllRead: %w", err)
	}
	return res, nil
}
