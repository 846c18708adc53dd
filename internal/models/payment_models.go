package models

import "time"

// PaymentRecordStatus is the ledger state of a payment attempt. A failed attempt
// is deleted rather than given a terminal status.
type PaymentRecordStatus string

const (
	PaymentRecordPending PaymentRecordStatus = "pending"
	PaymentRecordDone    PaymentRecordStatus = "payment done"
)

const (
	MethodSSLCommerz = "sslcommerz"
	MethodCard       = "card"
)

type Payment struct {
	ID            string              `json:"id"`
	OrderID       string              `json:"order_id"`
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	Amount        float64             `json:"amount"`
	Method        string              `json:"method"`
	TransactionID string              `json:"transaction_id"`
	Status        PaymentRecordStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
}

// GatewaySessionRequest starts a hosted gateway checkout for an order.
type GatewaySessionRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
}

type GatewaySessionResponse struct {
	URL string `json:"url"`
}

// PaymentIntentRequest carries the amount in major currency units.
type PaymentIntentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// DirectPaymentRequest records a payment the client already confirmed with
// the card processor.
type DirectPaymentRequest struct {
	OrderID       string  `json:"order_id" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Method        string  `json:"method" validate:"required"`
	TransactionID string  `json:"transaction_id" validate:"required"`
}
