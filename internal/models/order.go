package models

import (
	"strings"
	"time"
)

// OrderStatus is a step of the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCanceled  OrderStatus = "canceled"
)

// ParseOrderStatus accepts the canonical names plus the "cancelled" spelling.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "completed":
		return StatusCompleted, true
	case "canceled", "cancelled":
		return StatusCanceled, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransitionTo encodes the lifecycle: pending -> completed | canceled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == StatusPending && next.IsTerminal()
}

// Order is a purchase awaiting manual payment confirmation. Only Status
// changes after creation.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GameID           string      `json:"game_id" gorm:"type:varchar(36);index"`
	EmailForDelivery string      `json:"email_for_delivery" gorm:"type:varchar(255)"`
	NagadNumber      string      `json:"nagad_number" gorm:"type:varchar(32)"`
	TransactionID    string      `json:"transaction_id" gorm:"type:varchar(64)"`
	Status           OrderStatus `json:"status" gorm:"type:varchar(16);index"`
	CreatedAt        time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// PlaceOrderInput is the customer-submitted order form.
type PlaceOrderInput struct {
	GameID           string `json:"game_id" validate:"required"`
	EmailForDelivery string `json:"email_for_delivery" validate:"required,email"`
	NagadNumber      string `json:"nagad_number" validate:"required"`
	TransactionID    string `json:"transaction_id" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (in PlaceOrderInput) Normalize() PlaceOrderInput {
	return PlaceOrderInput{
		GameID:           strings.TrimSpace(in.GameID),
		EmailForDelivery: strings.TrimSpace(in.EmailForDelivery),
		NagadNumber:      strings.TrimSpace(in.NagadNumber),
		TransactionID:    strings.TrimSpace(in.TransactionID),
	}
}

// Order event types published on the message queue.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent describes a lifecycle change of an order.
type OrderEvent struct {
	Type             string      `json:"type"`
	OrderID          string      `json:"order_id"`
	GameID           string      `json:"game_id"`
	EmailForDelivery string      `json:"email_for_delivery"`
	TransactionID    string      `json:"transaction_id"`
	Status           OrderStatus `json:"status"`
	OccurredAt       time.Time   `json:"occurred_at"`
}

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(eventType string, order *Order) OrderEvent {
	return OrderEvent{
		Type:             eventType,
		OrderID:          order.ID,
		GameID:           order.GameID,
		EmailForDelivery: order.EmailForDelivery,
		TransactionID:    order.TransactionID,
		Status:           order.Status,
		OccurredAt:       time.Now().UTC(),
	}
}
