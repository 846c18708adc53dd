package notification

import (
	"testing"

	"food-delivery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "admin@example.com"

func TestFanout(t *testing.T) {
	customer := Participant{Name: "Rahim", Email: "rahim@example.com"}
	rider := &Participant{Name: "Karim", Email: "karim@example.com"}

	tests := []struct {
		name string
		ev   Event
		want map[string]string
	}{
		{
			name: "order placed",
			ev:   Event{Kind: EventOrderPlaced, RelatedID: "o1", Customer: customer},
			want: map[string]string{
				customer.Email: "Your order is placed successfully.",
				admin:          "New order is placed.",
			},
		},
		{
			name: "rider assigned",
			ev:   Event{Kind: EventRiderAssigned, RelatedID: "o1", Customer: customer, Rider: rider},
			want: map[string]string{
				customer.Email: "Your order is assigned to rider: Karim.",
				admin:          "You assigned rider to a order successfully.",
				rider.Email:    "You are assigned for a order. Go to the outlet and pick the order.",
			},
		},
		{
			name: "cancelled before assignment has no rider",
			ev:   Event{Kind: EventOrderCancelled, RelatedID: "o1", Customer: customer},
			want: map[string]string{
				customer.Email: "You cancelled a order.",
				admin:          "Order cancelled.",
			},
		},
		{
			name: "cashout goes to rider and admin only",
			ev:   Event{Kind: EventOrderCashedOut, RelatedID: "o1", Customer: customer, Rider: rider},
			want: map[string]string{
				rider.Email: "You cashout your earnings for a order.",
				admin:       "Rider cashed out earnings. Rider name: Karim. Rider email: karim@example.com.",
			},
		},
		{
			name: "rider approved",
			ev:   Event{Kind: EventRiderApproved, RelatedID: "r1", Rider: rider},
			want: map[string]string{
				rider.Email: "Your rider application is approved. You can now take deliveries.",
			},
		},
		{
			name: "unknown kind",
			ev:   Event{Kind: "nothing", Customer: customer},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fanout(tt.ev, admin)
			require.Len(t, got, len(tt.want))
			for _, n := range got {
				assert.Equal(t, models.NotificationDirect, n.Type)
				assert.False(t, n.IsRead)
				assert.Equal(t, tt.ev.RelatedID, n.RelatedID)
				assert.Equal(t, tt.want[n.Email], n.Message, "recipient %s", n.Email)
			}
		})
	}
}

func TestFanoutSkipsEmptyRecipients(t *testing.T) {
	got := Fanout(Event{Kind: EventOrderPicked, RelatedID: "o1"}, "")
	assert.Empty(t, got)
}
