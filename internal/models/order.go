package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus описывает этап жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// OrderStatuses перечисляет все статусы в порядке прохождения.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusInProgress,
	OrderStatusReady,
	OrderStatusPaid,
	OrderStatusCompleted,
}

// PricingTier - тариф заказа.
type PricingTier string

const (
	PricingTierBasic    PricingTier = "BASIC"
	PricingTierStandard PricingTier = "STANDARD"
	PricingTierPremium  PricingTier = "PREMIUM"
)

// Order представляет заказ песни.
type Order struct {
	ID          uuid.UUID   `db:"id"`
	OrderNumber string      `db:"order_number"`
	Status      OrderStatus `db:"status"`

	RecipientName   string   `db:"recipient_name"`
	Relationship    *string  `db:"relationship"`
	Occasion        *string  `db:"occasion"`
	MusicalStyle    []string `db:"musical_style"`
	SpecialRequests *string  `db:"special_requests"`
	Mood            *string  `db:"mood"`
	Tempo           *string  `db:"tempo"`

	PhoneNumber      string  `db:"phone_number"`
	TelegramUserID   *string `db:"telegram_user_id"`
	TelegramUsername *string `db:"telegram_username"`

	SelectedTier *PricingTier `db:"selected_tier"`
	SongFileURL  *string      `db:"song_file_url"`
	SongFileName *string      `db:"song_file_name"`

	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	ReadyAt     *time.Time `db:"ready_at"`
	PaidAt      *time.Time `db:"paid_at"`
	CompletedAt *time.Time `db:"completed_at"`

	// Version растёт при каждой записи, используется для оптимистичной блокировки.
	Version int64 `db:"version"`
}

// OrderResponse - представление заказа для API.
type OrderResponse struct {
	ID               uuid.UUID    `json:"id"`
	OrderNumber      string       `json:"orderNumber"`
	Status           OrderStatus  `json:"status"`
	RecipientName    string       `json:"recipientName"`
	Relationship     *string      `json:"relationship"`
	Occasion         *string      `json:"occasion"`
	MusicalStyle     []string     `json:"musicalStyle"`
	SpecialRequests  *string      `json:"specialRequests"`
	Mood             *string      `json:"mood"`
	Tempo            *string      `json:"tempo"`
	PhoneNumber      string       `json:"phoneNumber"`
	TelegramUserID   *string      `json:"telegramUserId"`
	TelegramUsername *string      `json:"telegramUsername"`
	SelectedTier     *PricingTier `json:"selectedTier"`
	SongFileURL      *string      `json:"songFileUrl"`
	SongFileName     *string      `json:"songFileName"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	ReadyAt          *time.Time   `json:"readyAt"`
	PaidAt           *time.Time   `json:"paidAt"`
	CompletedAt      *time.Time   `json:"completedAt"`
}

// OrderDetailResponse - заказ вместе с перепиской и платежами.
type OrderDetailResponse struct {
	OrderResponse
	Messages []*MessageResponse `json:"messages"`
	Payments []*PaymentResponse `json:"payments"`
}

// NewOrderResponse переводит заказ в формат API.
func NewOrderResponse(o *Order) *OrderResponse {
	styles := o.MusicalStyle
	if styles == nil {
		styles = []string{}
	}
	return &OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		Status:           o.Status,
		RecipientName:    o.RecipientName,
		Relationship:     o.Relationship,
		Occasion:         o.Occasion,
		MusicalStyle:     styles,
		SpecialRequests:  o.SpecialRequests,
		Mood:             o.Mood,
		Tempo:            o.Tempo,
		PhoneNumber:      o.PhoneNumber,
		TelegramUserID:   o.TelegramUserID,
		TelegramUsername: o.TelegramUsername,
		SelectedTier:     o.SelectedTier,
		SongFileURL:      o.SongFileURL,
		SongFileName:     o.SongFileName,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		ReadyAt:          o.ReadyAt,
		PaidAt:           o.PaidAt,
		CompletedAt:      o.CompletedAt,
	}
}

// OrderFilter - параметры выборки списка заказов.
type OrderFilter struct {
	Status         *OrderStatus
	OrderNumber    string
	TelegramUserID string
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	Limit          int
}

// Offset возвращает смещение для текущей страницы.
func (f OrderFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination описывает страницу выдачи.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination считает количество страниц.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// OrderListResponse - ответ для списка заказов.
type OrderListResponse struct {
	Orders     []*OrderResponse `json:"orders"`
	Pagination Pagination       `json:"pagination"`
}

// DashboardResponse - сводка по статусам для админки.
type DashboardResponse struct {
	Total    int                 `json:"total"`
	ByStatus map[OrderStatus]int `json:"byStatus"`
}
