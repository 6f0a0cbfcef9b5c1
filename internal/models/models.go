package models

import "time"

// Line item kinds
const (
	KindTicket      = "TICKET"
	KindMerchandise = "MERCHANDISE"
)

// LineItem is one entry in a cart: either a ticket for an event or a
// merchandise purchase. Kind is the discriminant; ticket and merchandise
// fields are only meaningful for their own kind.
type LineItem struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`

	// Ticket fields
	EventID      string `json:"event_id,omitempty"`
	EventName    string `json:"event_name,omitempty"`
	EventDate    string `json:"event_date,omitempty"`
	TicketTypeID int64  `json:"ticket_type_id,omitempty"`

	// Merchandise fields
	CatalogItemID int64  `json:"catalog_item_id,omitempty"`
	ImageRef      string `json:"image_ref,omitempty"`
	VariantLabel  string `json:"variant_label,omitempty"`
}

// IsTicket reports whether the item is an event ticket.
func (li *LineItem) IsTicket() bool {
	return li.Kind == KindTicket
}

// IsMerchandise reports whether the item is a merchandise purchase.
func (li *LineItem) IsMerchandise() bool {
	return li.Kind == KindMerchandise
}

// SameLine reports whether other merges into this line item. Tickets merge on
// (event, ticket type); merchandise merges on (catalog item, variant).
func (li *LineItem) SameLine(other *LineItem) bool {
	if li.Kind != other.Kind {
		return false
	}
	if li.Kind == KindTicket {
		return li.EventID == other.EventID && li.TicketTypeID == other.TicketTypeID
	}
	return li.CatalogItemID == other.CatalogItemID && li.VariantLabel == other.VariantLabel
}

// Venue is where an event takes place.
type Venue struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Address  string `db:"address" json:"address"`
	City     string `db:"city" json:"city"`
	Country  string `db:"country" json:"country"`
	Capacity int    `db:"capacity" json:"capacity"`
	MapURL   string `db:"map_url" json:"map_url,omitempty"`
}

// Performer appears on an event's bill.
type Performer struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Role     string `db:"role" json:"role,omitempty"`
	ImageURL string `db:"image_url" json:"image_url,omitempty"`
}

// TicketType is one price tier for an event.
type TicketType struct {
	ID          int64  `db:"id" json:"id"`
	EventID     string `db:"event_id" json:"event_id"`
	Name        string `db:"name" json:"name"`
	Price       int64  `db:"price" json:"price"`
	Description string `db:"description" json:"description"`
	Available   bool   `db:"available" json:"available"`
}

// Event is a show or appearance on the artist's calendar.
type Event struct {
	ID              string       `db:"id" json:"id"`
	Title           string       `db:"title" json:"title"`
	Slug            string       `db:"slug" json:"slug"`
	Date            string       `db:"date" json:"date"`
	Time            string       `db:"time" json:"time"`
	EndTime         string       `db:"end_time" json:"end_time,omitempty"`
	Description     string       `db:"description" json:"description"`
	LongDescription string       `db:"long_description" json:"long_description,omitempty"`
	IsSoldOut       bool         `db:"is_sold_out" json:"is_sold_out"`
	IsFeatured      bool         `db:"is_featured" json:"is_featured"`
	IsPublished     bool         `db:"is_published" json:"is_published"`
	Category        string       `db:"category" json:"category"`
	Tags            []string     `db:"-" json:"tags"`
	Venue           Venue        `db:"-" json:"venue"`
	Performers      []Performer  `db:"-" json:"performers"`
	TicketTypes     []TicketType `db:"-" json:"ticket_types"`
}

// MerchandiseItem is a catalog product in the store.
type MerchandiseItem struct {
	ID          int64    `db:"id" json:"id"`
	Name        string   `db:"name" json:"name"`
	Description string   `db:"description" json:"description"`
	Price       int64    `db:"price" json:"price"`
	ImageRef    string   `db:"image_ref" json:"image_ref"`
	Category    string   `db:"category" json:"category"`
	Variants    []string `db:"-" json:"variants,omitempty"`
	InStock     bool     `db:"in_stock" json:"in_stock"`
}

// Purchase is a completed checkout recorded for the back office.
type Purchase struct {
	ID               int64     `db:"id" json:"id"`
	ConfirmationCode string    `db:"confirmation_code" json:"confirmation_code"`
	FlowType         string    `db:"flow_type" json:"flow_type"`
	CustomerName     string    `db:"customer_name" json:"customer_name"`
	CustomerEmail    string    `db:"customer_email" json:"customer_email"`
	CustomerPhone    string    `db:"customer_phone" json:"customer_phone"`
	PaymentMethod    string    `db:"payment_method" json:"payment_method"`
	ProviderTxID     string    `db:"provider_tx_id" json:"provider_tx_id,omitempty"`
	Subtotal         int64     `db:"subtotal" json:"subtotal"`
	ShippingCost     int64     `db:"shipping_cost" json:"shipping_cost"`
	Fee              int64     `db:"fee" json:"fee"`
	Total            int64     `db:"total" json:"total"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Checkout flow types
const (
	FlowTicket      = "TICKET"
	FlowMerchandise = "MERCHANDISE"
	FlowExclusive   = "EXCLUSIVE"
	FlowGift        = "GIFT"
)

// Payment methods
const (
	PaymentMethodMpesa = "MPESA"
	PaymentMethodCard  = "CARD"
)

// BookingRequest is a persisted contact-form submission.
type BookingRequest struct {
	ID                int64     `db:"id" json:"id"`
	RequestType       string    `db:"request_type" json:"request_type"`
	Name              string    `db:"name" json:"name"`
	Email             string    `db:"email" json:"email"`
	Phone             string    `db:"phone" json:"phone"`
	Message           string    `db:"message" json:"message"`
	EventDate         string    `db:"event_date" json:"event_date,omitempty"`
	EventType         string    `db:"event_type" json:"event_type,omitempty"`
	SongGenre         string    `db:"song_genre" json:"song_genre,omitempty"`
	CollaborationType string    `db:"collaboration_type" json:"collaboration_type,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
