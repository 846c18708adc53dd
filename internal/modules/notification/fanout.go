package notification

import (
	"fmt"

	"food-delivery/internal/models"
)

// EventKind names a state change that produces notifications.
type EventKind string

const (
	EventOrderPlaced     EventKind = "order_placed"
	EventOrderCancelled  EventKind = "order_cancelled"
	EventRiderAssigned   EventKind = "rider_assigned"
	EventOrderPicked     EventKind = "order_picked"
	EventOrderDelivered  EventKind = "order_delivered"
	EventOrderCashedOut  EventKind = "order_cashed_out"
	EventPaymentReceived EventKind = "payment_received"
	EventRiderApproved   EventKind = "rider_approved"
)

type Participant struct {
	Name  string
	Email string
}

// Event describes one transition. Customer is the order owner or, for
// payments, the payer. Rider is nil when no rider takes part.
type Event struct {
	Kind      EventKind
	RelatedID string
	Customer  Participant
	Rider     *Participant
}

type recipient int

const (
	toCustomer recipient = iota
	toAdmin
	toRider
)

type message struct {
	to   recipient
	text func(ev Event) string
}

func fixed(s string) func(Event) string {
	return func(Event) string { return s }
}

var messages = map[EventKind][]message{
	EventOrderPlaced: {
		{toCustomer, fixed("Your order is placed successfully.")},
		{toAdmin, fixed("New order is placed.")},
	},
	EventOrderCancelled: {
		{toCustomer, fixed("You cancelled a order.")},
		{toAdmin, fixed("Order cancelled.")},
		{toRider, fixed("An order assigned to you is cancelled. You are available for new orders.")},
	},
	EventRiderAssigned: {
		{toCustomer, func(ev Event) string { return fmt.Sprintf("Your order is assigned to rider: %s.", ev.rider().Name) }},
		{toAdmin, fixed("You assigned rider to a order successfully.")},
		{toRider, fixed("You are assigned for a order. Go to the outlet and pick the order.")},
	},
	EventOrderPicked: {
		{toCustomer, fixed("Your order is picked by the rider.")},
		{toAdmin, fixed("A order is picked by a rider.")},
		{toRider, fixed("You picked a order.")},
	},
	EventOrderDelivered: {
		{toCustomer, fixed("Your order is delivered.")},
		{toAdmin, fixed("A order is delivered by a rider.")},
		{toRider, fixed("You Delivered a order.")},
	},
	EventOrderCashedOut: {
		{toRider, fixed("You cashout your earnings for a order.")},
		{toAdmin, func(ev Event) string {
			return fmt.Sprintf("Rider cashed out earnings. Rider name: %s. Rider email: %s.", ev.rider().Name, ev.rider().Email)
		}},
	},
	EventPaymentReceived: {
		{toCustomer, fixed("Your payment is successfully done. Go to my orders and you can download your receipt.")},
		{toAdmin, fixed("Payment received successfully.")},
	},
	EventRiderApproved: {
		{toRider, fixed("Your rider application is approved. You can now take deliveries.")},
	},
}

// Fanout returns one unread direct notification per participant of ev.
// Participants without an email are skipped.
func Fanout(ev Event, adminEmail string) []models.Notification {
	var out []models.Notification
	for _, m := range messages[ev.Kind] {
		var email string
		switch m.to {
		case toCustomer:
			email = ev.Customer.Email
		case toAdmin:
			email = adminEmail
		case toRider:
			if ev.Rider == nil {
				continue
			}
			email = ev.Rider.Email
		}
		if email == "" {
			continue
		}
		out = append(out, models.Notification{
			Type:      models.NotificationDirect,
			Email:     email,
			Message:   m.text(ev),
			RelatedID: ev.RelatedID,
		})
	}
	return out
}

func (ev Event) rider() Participant {
	if ev.Rider == nil {
		return Participant{}
	}
	return *ev.Rider
}
