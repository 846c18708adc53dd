package notification

import (
	"context"
	"errors"
	"testing"

	"food-delivery/internal/models"
	"food-delivery/internal/modules/notification/notificationtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.sent = append(m.sent, to)
	return m.err
}

func TestPublishIsBestEffort(t *testing.T) {
	repo := notificationtest.NewMemoryRepository()
	repo.FailFor = admin
	mailer := &fakeMailer{}
	svc := NewService(repo, admin, mailer, zap.NewNop())

	svc.Publish(context.Background(), Event{
		Kind:      EventOrderPicked,
		RelatedID: "o1",
		Customer:  Participant{Email: "c@example.com"},
		Rider:     &Participant{Name: "R", Email: "r@example.com"},
	})

	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, "c@example.com", all[0].Email)
	assert.Equal(t, "r@example.com", all[1].Email)
	assert.Equal(t, []string{"c@example.com", "r@example.com"}, mailer.sent)
}

func TestPublishMailerFailureIsIgnored(t *testing.T) {
	repo := notificationtest.NewMemoryRepository()
	svc := NewService(repo, admin, &fakeMailer{err: errors.New("throttled")}, zap.NewNop())

	svc.Publish(context.Background(), Event{Kind: EventOrderPlaced, RelatedID: "o1", Customer: Participant{Email: "c@example.com"}})
	assert.Len(t, repo.All(), 2)
}

func TestPublishOutlivesCancelledRequest(t *testing.T) {
	repo := notificationtest.NewMemoryRepository()
	mailer := &fakeMailer{}
	svc := NewService(repo, admin, mailer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Publish(ctx, Event{Kind: EventOrderPlaced, RelatedID: "o1", Customer: Participant{Email: "c@example.com"}})
	svc.Broadcast(ctx, "New food item: Biryani.", "f1")

	assert.Len(t, repo.All(), 3)
	assert.Equal(t, []string{"c@example.com", admin}, mailer.sent)
}

func TestListAndReadAll(t *testing.T) {
	ctx := context.Background()
	repo := notificationtest.NewMemoryRepository()
	svc := NewService(repo, admin, nil, zap.NewNop())

	svc.Publish(ctx, Event{Kind: EventOrderPlaced, RelatedID: "o1", Customer: Participant{Email: "c@example.com"}})
	svc.Broadcast(ctx, "New food item: Biryani.", "f1")

	page, err := svc.List(ctx, "c@example.com", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Unread)
	assert.Equal(t, models.NotificationBroadcast, page.Notifications[0].Type)
	assert.False(t, page.Notifications[0].IsRead)

	res, err := svc.ReadAll(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ReadAllResult{Direct: 1, Broadcast: 1}, res)

	page, err = svc.List(ctx, "c@example.com", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Unread)
	for _, n := range page.Notifications {
		assert.True(t, n.IsRead)
	}

	// Idempotent, and another reader still sees the broadcast unread.
	res, err = svc.ReadAll(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ReadAllResult{}, res)

	other, err := svc.List(ctx, "someone@example.com", 1, 10)
	require.NoError(t, err)
	require.Len(t, other.Notifications, 1)
	assert.False(t, other.Notifications[0].IsRead)
}

func TestListClampsPaging(t *testing.T) {
	repo := notificationtest.NewMemoryRepository()
	svc := NewService(repo, admin, nil, zap.NewNop())

	page, err := svc.List(context.Background(), "nobody@example.com", 0, 1000)
	require.NoError(t, err)
	assert.NotNil(t, page.Notifications)
	assert.Empty(t, page.Notifications)
}

func TestListPastLastPageKeepsTotal(t *testing.T) {
	ctx := context.Background()
	repo := notificationtest.NewMemoryRepository()
	svc := NewService(repo, admin, nil, zap.NewNop())
	svc.Publish(ctx, Event{Kind: EventOrderPlaced, RelatedID: "o1", Customer: Participant{Email: "c@example.com"}})
	svc.Broadcast(ctx, "New food item: Biryani.", "f1")

	page, err := svc.List(ctx, "c@example.com", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Unread)
}
