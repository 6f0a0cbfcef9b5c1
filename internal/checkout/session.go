package checkout

import (
	"time"

	"storefront-service/internal/models"
)

// Checkout steps, monotonic forward-only
const (
	StepDetails  = "DETAILS"
	StepPayment  = "PAYMENT"
	StepComplete = "COMPLETE"
)

// Contact is the universal contact block collected at the Details step.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ShippingAddress for merchandise checkouts.
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

// Offering is an exclusive purchase handed off from the promotional widget
// via the short-lived session entry.
type Offering struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Session is one checkout flow instance. Not persisted across restarts; an
// abandoned session is simply dropped.
type Session struct {
	ID        string    `json:"id"`
	FlowType  string    `json:"flow_type"`
	CartID    string    `json:"cart_id"`
	Step      string    `json:"step"`
	CreatedAt time.Time `json:"created_at"`

	Contact Contact `json:"contact"`

	// Ticket context
	Event      *models.Event     `json:"event,omitempty"`
	TicketType models.TicketType `json:"ticket_type,omitempty"`
	Quantity   int               `json:"quantity,omitempty"`

	// Merchandise context
	Shipping ShippingMethod  `json:"shipping,omitempty"`
	Address  ShippingAddress `json:"address,omitempty"`

	// Exclusive/gift context
	Offering    *Offering `json:"offering,omitempty"`
	GiftAmount  int64     `json:"gift_amount,omitempty"`
	GiftMessage string    `json:"gift_message,omitempty"`

	// Items priced at the Details step (ticket line or merchandise cart).
	Items  []models.LineItem `json:"items,omitempty"`
	Totals Totals            `json:"totals"`

	PaymentMethod    string `json:"payment_method,omitempty"`
	MpesaPhone       string `json:"mpesa_phone,omitempty"`
	ProviderTxID     string `json:"provider_tx_id,omitempty"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`

	// FlowError is the single flow-level message surfaced with a retry
	// action, e.g. a declined settlement.
	FlowError string `json:"flow_error,omitempty"`

	processing bool
	closed     bool
}

// Processing reports whether a settlement is in flight for this session.
func (s *Session) Processing() bool { return s.processing }

// view returns a copy safe to hand to callers outside the manager lock.
func (s *Session) view() *Session {
	v := *s
	v.Items = make([]models.LineItem, len(s.Items))
	copy(v.Items, s.Items)
	return &v
}

// DetailsRequest is the Details step submission. Context fields are only
// consulted for the matching flow type.
type DetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	TicketTypeID int64 `json:"ticket_type_id,omitempty"`
	Quantity     int   `json:"quantity,omitempty"`

	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	ShippingMethodID string `json:"shipping_method_id,omitempty"`

	GiftAmount  int64  `json:"gift_amount,omitempty"`
	GiftMessage string `json:"gift_message,omitempty"`

	TermsAgreed bool `json:"terms_agreed"`
}

// PaymentRequest is the Payment step submission.
type PaymentRequest struct {
	PaymentMethod string `json:"payment_method"`

	MpesaPhone string `json:"mpesa_phone,omitempty"`

	CardNumber string `json:"card_number,omitempty"`
	CardName   string `json:"card_name,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVC    string `json:"card_cvc,omitempty"`

	PaymentTermsAgreed bool `json:"payment_terms_agreed"`
}
