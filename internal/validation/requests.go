package validation

import (
	"strings"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest - данные формы заказа.
type CreateOrderRequest struct {
	RecipientName   string   `json:"recipientName" validate:"required,max=255"`
	Relationship    *string  `json:"relationship" validate:"omitnil,max=100"`
	Occasion        *string  `json:"occasion" validate:"omitnil,max=100"`
	MusicalStyle    []string `json:"musicalStyle" validate:"omitnil,min=1,max=10"`
	SpecialRequests *string  `json:"specialRequests" validate:"omitnil,max=5000"`
	Mood            *string  `json:"mood" validate:"omitnil,max=50"`
	Tempo           *string  `json:"tempo" validate:"omitnil,max=50"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required,phone"`
}

func (r *CreateOrderRequest) Normalize() {
	r.RecipientName = strings.TrimSpace(r.RecipientName)
	r.Relationship = trimPtr(r.Relationship)
	r.Occasion = trimPtr(r.Occasion)
	r.SpecialRequests = trimPtr(r.SpecialRequests)
	r.Mood = trimPtr(r.Mood)
	r.Tempo = trimPtr(r.Tempo)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	for i, s := range r.MusicalStyle {
		r.MusicalStyle[i] = strings.TrimSpace(s)
	}
}

// UpdateOrderRequest - частичное обновление заказа. Все поля необязательны.
type UpdateOrderRequest struct {
	Status           *models.OrderStatus `json:"status" validate:"omitnil,oneof=NEW IN_PROGRESS READY PAID COMPLETED"`
	PhoneNumber      *string             `json:"phoneNumber" validate:"omitnil,phone"`
	TelegramUserID   *string             `json:"telegramUserId" validate:"omitnil,max=50"`
	TelegramUsername *string             `json:"telegramUsername" validate:"omitnil,max=100"`
	SelectedTier     *models.PricingTier `json:"selectedTier" validate:"omitnil,oneof=BASIC STANDARD PREMIUM"`
	SongFileURL      *string             `json:"songFileUrl" validate:"omitnil,url_or_empty"`
	SongFileName     *string             `json:"songFileName" validate:"omitnil,max=255"`
	ReadyAt          *time.Time          `json:"readyAt"`
	PaidAt           *time.Time          `json:"paidAt"`
	CompletedAt      *time.Time          `json:"completedAt"`
}

func (r *UpdateOrderRequest) Normalize() {
	r.PhoneNumber = trimKeep(r.PhoneNumber)
	r.TelegramUserID = trimKeep(r.TelegramUserID)
	r.TelegramUsername = trimKeep(r.TelegramUsername)
	r.SongFileURL = trimKeep(r.SongFileURL)
	r.SongFileName = trimKeep(r.SongFileName)
}

// HasStatusChange сообщает, запрошена ли смена статуса.
func (r *UpdateOrderRequest) HasStatusChange() bool {
	return r.Status != nil
}

// CreateMessageRequest - новое сообщение по заказу.
type CreateMessageRequest struct {
	OrderID string               `json:"orderId" validate:"required,uuid"`
	Sender  models.MessageSender `json:"sender" validate:"required,oneof=CLIENT ADMIN SYSTEM"`
	Content string               `json:"content" validate:"required,max=10000"`
}

func (r *CreateMessageRequest) Normalize() {
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.Content = strings.TrimSpace(r.Content)
}

// CreatePaymentRequest - регистрация платежа.
type CreatePaymentRequest struct {
	OrderID  string             `json:"orderId" validate:"required,uuid"`
	Amount   decimal.Decimal    `json:"amount" validate:"gt=0,lte=999999.99"`
	Currency string             `json:"currency" validate:"required,len=3,alpha"`
	Tier     models.PricingTier `json:"tier" validate:"required,oneof=BASIC STANDARD PREMIUM"`
}

func (r *CreatePaymentRequest) Normalize() {
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

// UpdatePaymentRequest - обновление статуса платежа.
type UpdatePaymentRequest struct {
	Status          *models.PaymentStatus `json:"status" validate:"omitnil,oneof=PENDING SUCCEEDED FAILED REFUNDED"`
	PaymentIntentID *string               `json:"paymentIntentId" validate:"omitnil,max=255"`
	PaidAt          *time.Time            `json:"paidAt"`
}

func (r *UpdatePaymentRequest) Normalize() {
	r.PaymentIntentID = trimKeep(r.PaymentIntentID)
}

// CreateAdminRequest - создание сотрудника.
type CreateAdminRequest struct {
	Email    string           `json:"email" validate:"required,min=5,max=255,email"`
	Password string           `json:"password" validate:"required,min=8,max=100,password"`
	Name     string           `json:"name" validate:"required,max=255"`
	Role     models.AdminRole `json:"role" validate:"required,oneof=ADMIN SUPER_ADMIN"`
}

func (r *CreateAdminRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

// LoginRequest - вход в админку.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}
