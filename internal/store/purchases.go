package store

import (
	"context"
	"database/sql"

	"storefront-service/internal/models"
)

// CreatePurchase records a completed checkout.
func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	query := `
		INSERT INTO purchases (confirmation_code, flow_type, customer_name, customer_email,
			customer_phone, payment_method, provider_tx_id, subtotal, shipping_cost, fee, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, purchase, query,
		purchase.ConfirmationCode, purchase.FlowType, purchase.CustomerName,
		purchase.CustomerEmail, purchase.CustomerPhone, purchase.PaymentMethod,
		purchase.ProviderTxID, purchase.Subtotal, purchase.ShippingCost,
		purchase.Fee, purchase.Total)
}

// GetPurchaseByConfirmationCode retrieves a purchase; (nil, nil) when absent.
func (s *Store) GetPurchaseByConfirmationCode(ctx context.Context, code string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.GetContext(ctx, &purchase,
		"SELECT * FROM purchases WHERE confirmation_code = $1", code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// CreateBookingRequest records a contact-form submission.
func (s *Store) CreateBookingRequest(ctx context.Context, req *models.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (request_type, name, email, phone, message,
			event_date, event_type, song_genre, collaboration_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, req, query,
		req.RequestType, req.Name, req.Email, req.Phone, req.Message,
		req.EventDate, req.EventType, req.SongGenre, req.CollaborationType)
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
