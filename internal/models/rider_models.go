package models

import "time"

// RiderStatus is the admin approval gate.
type RiderStatus string

const (
	RiderPending RiderStatus = "pending"
	RiderActive  RiderStatus = "active"
)

// WorkStatus tells whether a rider can take a new assignment.
type WorkStatus string

const (
	WorkAvailable  WorkStatus = "available"
	WorkInDelivery WorkStatus = "in_delivery"
)

type Rider struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	District   string      `json:"district"`
	Thana      string      `json:"thana"`
	Region     string      `json:"region"`
	Status     RiderStatus `json:"status"`
	WorkStatus WorkStatus  `json:"work_status"`
	AppliedAt  time.Time   `json:"applied_at"`
	ActiveAt   *time.Time  `json:"active_at,omitempty"`
}

// Available reports whether the rider may be assigned to an order.
func (r *Rider) Available() bool {
	return r.Status == RiderActive && r.WorkStatus == WorkAvailable
}

// RiderApplication is submitted by a customer applying to ride.
type RiderApplication struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	District string `json:"district" validate:"required"`
	Thana    string `json:"thana" validate:"required"`
	Region   string `json:"region" validate:"required"`
}

type RiderStatusRequest struct {
	Status RiderStatus `json:"status" validate:"required,eq=active"`
}

// ReconcileResult reports how many riders had their work status corrected.
type ReconcileResult struct {
	Released int64 `json:"released"`
	Occupied int64 `json:"occupied"`
}

// Deliveries without a recorded charge pay a flat fee by basket size.
const (
	FallbackFeeSingleItem = 30.0
	FallbackFeeMultiItem  = 50.0
)

// RiderDelivery is the part of an order rider earnings are computed from.
type RiderDelivery struct {
	Status         OrderStatus
	CashoutStatus  CashoutStatus
	DeliveryCharge float64
	ItemCount      int
}

// Fee is what the rider earns for the delivery.
func (d RiderDelivery) Fee() float64 {
	if d.DeliveryCharge != 0 {
		return d.DeliveryCharge
	}
	if d.ItemCount > 1 {
		return FallbackFeeMultiItem
	}
	return FallbackFeeSingleItem
}

// RiderEarnings summarises a rider's orders and what has been cashed out.
type RiderEarnings struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	PickedOrders    int     `json:"picked_orders"`
	CompletedOrders int     `json:"completed_orders"`
	TotalEarnings   float64 `json:"total_earnings"`
	CashoutMoney    float64 `json:"cashout_money"`
	PendingCashout  float64 `json:"pending_cashout"`
}

// SummarizeEarnings folds deliveries into a RiderEarnings. Only delivered
// orders earn; of those, cashed-out ones count as cashout money and the
// rest as pending cashout.
func SummarizeEarnings(deliveries []RiderDelivery) RiderEarnings {
	var e RiderEarnings
	for _, d := range deliveries {
		e.TotalOrders++
		switch d.Status {
		case OrderAssigned:
			e.PendingOrders++
		case OrderPicked:
			e.PickedOrders++
		case OrderDelivered:
			e.CompletedOrders++
			fee := d.Fee()
			e.TotalEarnings += fee
			if d.CashoutStatus == CashoutCashedOut {
				e.CashoutMoney += fee
			} else {
				e.PendingCashout += fee
			}
		}
	}
	return e
}
