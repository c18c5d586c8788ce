package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageSender - автор сообщения в переписке по заказу.
type MessageSender string

const (
	MessageSenderClient MessageSender = "CLIENT"
	MessageSenderAdmin  MessageSender = "ADMIN"
	MessageSenderSystem MessageSender = "SYSTEM"
)

// Message представляет сообщение по заказу.
type Message struct {
	ID        uuid.UUID     `db:"id"`
	OrderID   uuid.UUID     `db:"order_id"`
	Sender    MessageSender `db:"sender"`
	Content   string        `db:"content"`
	CreatedAt time.Time     `db:"created_at"`
	ReadAt    *time.Time    `db:"read_at"`
}

// MessageResponse DTO сообщения.
type MessageResponse struct {
	ID        uuid.UUID     `json:"id"`
	OrderID   uuid.UUID     `json:"orderId"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	ReadAt    *time.Time    `json:"readAt"`
}

func NewMessageResponse(m *Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}

// NewMessageResponses маппит список, пустой список остаётся пустым массивом в JSON.
func NewMessageResponses(list []*Message) []*MessageResponse {
	resp := make([]*MessageResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, NewMessageResponse(m))
	}
	return resp
}
