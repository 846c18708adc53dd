package models

import (
	"time"
)

type OrderStatus string

const (
	OrderNotAssigned OrderStatus = "not_assigned"
	OrderAssigned    OrderStatus = "assigned"
	OrderPicked      OrderStatus = "picked"
	OrderDelivered   OrderStatus = "delivered"
	OrderCancelled   OrderStatus = "cancelled"
)

// PaymentStatus is the order-side view of payment, independent of Status.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type CashoutStatus string

const (
	CashoutPending   CashoutStatus = "pending"
	CashoutCashedOut CashoutStatus = "cashed_out"
)

type Address struct {
	District string `json:"district" validate:"required"`
	Thana    string `json:"thana" validate:"required"`
	Region   string `json:"region" validate:"required"`
}

type Customer struct {
	Name    string  `json:"name"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

type OrderItem struct {
	FoodID   string  `json:"food_id" validate:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

// Order represents a customer order and its lifecycle state.
type Order struct {
	ID             string        `json:"id"`
	Customer       Customer      `json:"customer"`
	Items          []OrderItem   `json:"items"`
	Total          float64       `json:"total"`
	DeliveryCharge float64       `json:"delivery_charge"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CashoutStatus  CashoutStatus `json:"cashout_status"`
	RiderID        *string       `json:"rider_id,omitempty"`
	RiderName      *string       `json:"rider_name,omitempty"`
	RiderEmail     *string       `json:"rider_email,omitempty"`
	PlacedAt       time.Time     `json:"placed_at"`
	AssignedAt     *time.Time    `json:"assigned_at,omitempty"`
	PickedAt       *time.Time    `json:"picked_at,omitempty"`
	DeliveredAt    *time.Time    `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
	CashedOutAt    *time.Time    `json:"cashed_out_at,omitempty"`
}

// IsAssignedTo reports whether email is the rider currently recorded on the order.
func (o *Order) IsAssignedTo(email string) bool {
	return o.RiderEmail != nil && SameEmail(*o.RiderEmail, email)
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Customer       Customer    `json:"customer"`
	Items          []OrderItem `json:"items" validate:"required,min=1,dive"`
	Total          float64     `json:"total" validate:"gte=0"`
	DeliveryCharge float64     `json:"delivery_charge" validate:"gte=0"`
}

// CancelOrderRequest is accepted by PATCH /orders/:id.
type CancelOrderRequest struct {
	Status OrderStatus `json:"status" validate:"required,eq=cancelled"`
}

// AssignRiderRequest holds the rider an admin dispatches to an order. Name and
// email are optional; the stored rider record is authoritative.
type AssignRiderRequest struct {
	RiderID    string `json:"rider_id" validate:"required"`
	RiderName  string `json:"rider_name"`
	RiderEmail string `json:"rider_email" validate:"omitempty,email"`
}

// UpdateStatusRequest is sent by the assigned rider to report progress.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=picked delivered"`
}
