package models

import "time"

// Event types
const (
	EventTypeCheckoutCompleted = "CHECKOUT_COMPLETED"
	EventTypePaymentApproved   = "PAYMENT_APPROVED"
	EventTypePaymentDeclined   = "PAYMENT_DECLINED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckoutCompletedEvent published when a checkout flow reaches Complete
type CheckoutCompletedEvent struct {
	BaseEvent
	CheckoutID       string         `json:"checkout_id"`
	FlowType         string         `json:"flow_type"`
	ConfirmationCode string         `json:"confirmation_code"`
	CustomerName     string         `json:"customer_name"`
	CustomerEmail    string         `json:"customer_email"`
	CustomerPhone    string         `json:"customer_phone"`
	PaymentMethod    string         `json:"payment_method"`
	ProviderTxID     string         `json:"provider_tx_id"`
	Subtotal         int64          `json:"subtotal"`
	ShippingCost     int64          `json:"shipping_cost"`
	Fee              int64          `json:"fee"`
	Total            int64          `json:"total"`
	Items            []LineItemData `json:"items,omitempty"`
}

// PaymentApprovedEvent published when settlement is approved
type PaymentApprovedEvent struct {
	BaseEvent
	CheckoutID string `json:"checkout_id"`
	Amount     int64  `json:"amount"`
	TxID       string `json:"tx_id"`
}

// PaymentDeclinedEvent published when settlement is declined
type PaymentDeclinedEvent struct {
	BaseEvent
	CheckoutID string `json:"checkout_id"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
}

// LineItemData represents item data in events
type LineItemData struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}
