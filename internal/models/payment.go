package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus описывает состояние платежа.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment - платёж по заказу. Хранится как есть, без сверки с процессингом.
type Payment struct {
	ID              uuid.UUID       `db:"id"`
	OrderID         uuid.UUID       `db:"order_id"`
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	Tier            PricingTier     `db:"tier"`
	Status          PaymentStatus   `db:"status"`
	PaymentIntentID *string         `db:"payment_intent_id"`
	CreatedAt       time.Time       `db:"created_at"`
	PaidAt          *time.Time      `db:"paid_at"`
}

// PaymentResponse DTO платежа.
type PaymentResponse struct {
	ID              uuid.UUID     `json:"id"`
	OrderID         uuid.UUID     `json:"orderId"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	Tier            PricingTier   `json:"tier"`
	Status          PaymentStatus `json:"status"`
	PaymentIntentID *string       `json:"paymentIntentId"`
	CreatedAt       time.Time     `json:"createdAt"`
	PaidAt          *time.Time    `json:"paidAt"`
}

func NewPaymentResponse(p *Payment) *PaymentResponse {
	amount, _ := p.Amount.Float64()
	return &PaymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		Amount:          amount,
		Currency:        p.Currency,
		Tier:            p.Tier,
		Status:          p.Status,
		PaymentIntentID: p.PaymentIntentID,
		CreatedAt:       p.CreatedAt,
		PaidAt:          p.PaidAt,
	}
}

func NewPaymentResponses(list []*Payment) []*PaymentResponse {
	resp := make([]*PaymentResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, NewPaymentResponse(p))
	}
	return resp
}
