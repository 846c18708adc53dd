// Package notificationtest provides an in-memory notification repository for
// tests of packages that publish notifications.
package notificationtest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"food-delivery/internal/models"
)

type MemoryRepository struct {
	mu    sync.Mutex
	items []models.Notification
	seq   int

	// FailFor makes Insert fail for the given recipient email.
	FailFor string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert fails on a done context, as a database write would.
func (m *MemoryRepository) Insert(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor != "" && n.Email == m.FailFor {
		return fmt.Errorf("insert notification for %s: connection reset", n.Email)
	}
	m.seq++
	n.ID = fmt.Sprintf("n-%d", m.seq)
	n.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := *n
	cp.ReadBy = slices.Clone(n.ReadBy)
	m.items = append(m.items, cp)
	return nil
}

func (m *MemoryRepository) ListFor(ctx context.Context, email string, page, limit int) ([]models.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var visible []models.Notification
	for _, n := range m.items {
		switch n.Type {
		case models.NotificationDirect:
			if n.Email == email {
				visible = append(visible, n)
			}
		case models.NotificationBroadcast:
			n.IsRead = slices.Contains(n.ReadBy, email)
			visible = append(visible, n)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].CreatedAt.After(visible[j].CreatedAt) })

	total := len(visible)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := min(start+limit, total)
	return visible[start:end], total, nil
}

func (m *MemoryRepository) CountUnread(ctx context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.Type == models.NotificationDirect && n.Email == email && !n.IsRead {
			count++
		}
		if n.Type == models.NotificationBroadcast && !slices.Contains(n.ReadBy, email) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) MarkAllRead(ctx context.Context, email string) (models.ReadAllResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res models.ReadAllResult
	for i := range m.items {
		n := &m.items[i]
		if n.Type == models.NotificationDirect && n.Email == email && !n.IsRead {
			n.IsRead = true
			res.Direct++
		}
		if n.Type == models.NotificationBroadcast && !slices.Contains(n.ReadBy, email) {
			n.ReadBy = append(n.ReadBy, email)
			res.Broadcast++
		}
	}
	return res, nil
}

// All returns a copy of every stored notification in insertion order.
func (m *MemoryRepository) All() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

// For returns the direct notifications stored for email.
func (m *MemoryRepository) For(email string) []models.Notification {
	var out []models.Notification
	for _, n := range m.All() {
		if n.Type == models.NotificationDirect && n.Email == email {
			out = append(out, n)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (m *MemoryRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
}
