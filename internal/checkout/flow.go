package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/payment"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("checkout session not found")
	ErrEventNotFound = errors.New("event not found")
	ErrSoldOut       = errors.New("event is sold out")
	ErrEmptyCart     = errors.New("no merchandise items in cart")
	ErrNoOffering    = errors.New("no offering pending for this session")
	ErrWrongStep     = errors.New("operation not valid for current step")
	ErrProcessing    = errors.New("payment already processing")
)

// EventPublisher publishes purchase lifecycle events.
type EventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error
	PublishPaymentApproved(ctx context.Context, event *models.PaymentApprovedEvent) error
	PublishPaymentDeclined(ctx context.Context, event *models.PaymentDeclinedEvent) error
}

// HandoffStore holds the short-lived exclusive-offering handoff entries.
// TakeHandoff is read-once: the entry is deleted on read. A nil result means
// no entry exists.
type HandoffStore interface {
	PutHandoff(ctx context.Context, cartID string, data []byte) error
	TakeHandoff(ctx context.Context, cartID string) ([]byte, error)
}

// Config carries the tunable business limits. Zero values fall back to the
// site defaults.
type Config struct {
	Pricing           Pricing
	MaxTicketQuantity int
	MinGiftAmount     int64
	DefaultGiftAmount int64
}

// Manager owns all live checkout sessions and drives the
// Details -> Payment -> Complete state machine for every flow type.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	carts     *cart.Service
	catalog   catalog.Catalog
	settler   payment.Settler
	publisher EventPublisher
	handoffs  HandoffStore
	cfg       Config
	logger    *zap.Logger
}

// NewManager creates a checkout manager.
func NewManager(
	carts *cart.Service,
	cat catalog.Catalog,
	settler payment.Settler,
	publisher EventPublisher,
	handoffs HandoffStore,
	cfg Config,
) *Manager {
	if cfg.Pricing == (Pricing{}) {
		cfg.Pricing = DefaultPricing()
	}
	if cfg.MaxTicketQuantity == 0 {
		cfg.MaxTicketQuantity = 10
	}
	if cfg.MinGiftAmount == 0 {
		cfg.MinGiftAmount = 100
	}
	if cfg.DefaultGiftAmount == 0 {
		cfg.DefaultGiftAmount = 500
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		carts:     carts,
		catalog:   cat,
		settler:   settler,
		publisher: publisher,
		handoffs:  handoffs,
		cfg:       cfg,
		logger:    util.GetLogger(),
	}
}

// StartRequest opens a new checkout flow for one purchase context.
type StartRequest struct {
	FlowType string `json:"flow_type" binding:"required"`
	CartID   string `json:"cart_id" binding:"required"`
	EventID  string `json:"event_id,omitempty"`
}

// Start creates a checkout session at the Details step.
func (m *Manager) Start(ctx context.Context, req StartRequest) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutManager.Start")
	defer span.End()

	sess := &Session{
		ID:        uuid.New().String(),
		FlowType:  req.FlowType,
		CartID:    req.CartID,
		Step:      StepDetails,
		CreatedAt: time.Now(),
	}

	switch req.FlowType {
	case models.FlowTicket:
		ev, err := m.catalog.GetEvent(ctx, req.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load event: %w", err)
		}
		if ev == nil {
			return nil, ErrEventNotFound
		}
		if ev.IsSoldOut {
			return nil, ErrSoldOut
		}
		sess.Event = ev

	case models.FlowMerchandise:
		if len(m.carts.ItemsOfKind(ctx, req.CartID, models.KindMerchandise)) == 0 {
			return nil, ErrEmptyCart
		}

	case models.FlowExclusive:
		data, err := m.handoffs.TakeHandoff(ctx, req.CartID)
		if err != nil {
			return nil, fmt.Errorf("failed to read offering handoff: %w", err)
		}
		if data == nil {
			return nil, ErrNoOffering
		}
		var off Offering
		if err := json.Unmarshal(data, &off); err != nil {
			return nil, fmt.Errorf("failed to decode offering handoff: %w", err)
		}
		sess.Offering = &off

	case models.FlowGift:
		sess.GiftAmount = m.cfg.DefaultGiftAmount

	default:
		return nil, fmt.Errorf("unknown flow type: %s", req.FlowType)
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	view := sess.view()
	m.mu.Unlock()

	util.CheckoutsStartedTotal.WithLabelValues(req.FlowType).Inc()
	m.logger.Info("Checkout started",
		zap.String("checkout_id", sess.ID),
		zap.String("flow_type", req.FlowType))
	return view, nil
}

// StoreOffering records the promotional widget's handoff for an upcoming
// exclusive checkout.
func (m *Manager) StoreOffering(ctx context.Context, cartID string, off Offering) error {
	data, err := json.Marshal(off)
	if err != nil {
		return fmt.Errorf("failed to encode offering: %w", err)
	}
	return m.handoffs.PutHandoff(ctx, cartID, data)
}

// Get returns a view of the session.
func (m *Manager) Get(checkoutID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[checkoutID]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.view(), nil
}

// Close tears down a flow. A settlement still in flight is abandoned: its
// result is discarded and no state is written afterwards.
func (m *Manager) Close(checkoutID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[checkoutID]; ok {
		sess.closed = true
		delete(m.sessions, checkoutID)
	}
}

// SubmitDetails validates the Details step and, on success, prices the
// purchase and advances to Payment. Field errors leave the session at
// Details; resubmitting re-validates the same session.
func (m *Manager) SubmitDetails(ctx context.Context, checkoutID string, req DetailsRequest) (*Session, FieldErrors, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutManager.SubmitDetails")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[checkoutID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if sess.Step != StepDetails {
		return nil, nil, ErrWrongStep
	}

	fe := ValidateContact(req.Name, req.Email, req.Phone)

	var ticketType models.TicketType
	var shipping ShippingMethod
	giftAmount := sess.GiftAmount

	switch sess.FlowType {
	case models.FlowTicket:
		tt, found := findTicketType(sess.Event.TicketTypes, req.TicketTypeID)
		switch {
		case !found:
			fe.Add("ticket_type", "Please select a ticket type")
		case !tt.Available:
			fe.Add("ticket_type", "This ticket type is sold out")
		default:
			ticketType = tt
		}
		if req.Quantity < 1 {
			fe.Add("quantity", "Please select at least 1 ticket")
		} else if req.Quantity > m.cfg.MaxTicketQuantity {
			fe.Add("quantity", fmt.Sprintf("Maximum %d tickets per order", m.cfg.MaxTicketQuantity))
		}

	case models.FlowMerchandise:
		if req.Address == "" {
			fe.Add("address", "Please enter your shipping address")
		}
		if req.City == "" {
			fe.Add("city", "Please enter your city")
		}
		sm, found := ShippingMethodByID(req.ShippingMethodID)
		if !found {
			fe.Add("shipping_method", "Please select a shipping method")
		} else {
			shipping = sm
		}

	case models.FlowGift:
		if req.GiftAmount != 0 {
			giftAmount = req.GiftAmount
		}
		if giftAmount < m.cfg.MinGiftAmount {
			fe.Add("gift_amount", fmt.Sprintf("Please enter a valid amount (minimum KES %d)", m.cfg.MinGiftAmount))
		}
	}

	if !req.TermsAgreed {
		fe.Add("terms", "You must agree to the terms and conditions")
	}

	if !fe.Empty() {
		util.CheckoutValidationFailures.WithLabelValues("details").Inc()
		return sess.view(), fe, nil
	}

	phone, _ := NormalizePhone(req.Phone)
	sess.Contact = Contact{Name: req.Name, Email: req.Email, Phone: phone}

	switch sess.FlowType {
	case models.FlowTicket:
		sess.TicketType = ticketType
		sess.Quantity = req.Quantity
		sess.Items = []models.LineItem{{
			ID:           uuid.New().String(),
			Kind:         models.KindTicket,
			Name:         sess.Event.Title,
			UnitPrice:    ticketType.Price,
			Quantity:     req.Quantity,
			EventID:      sess.Event.ID,
			EventName:    sess.Event.Title,
			EventDate:    sess.Event.Date,
			TicketTypeID: ticketType.ID,
		}}
		sess.Totals = m.cfg.Pricing.TicketTotals(ticketType.Price * int64(req.Quantity))

	case models.FlowMerchandise:
		items := m.carts.ItemsOfKind(ctx, sess.CartID, models.KindMerchandise)
		if len(items) == 0 {
			return nil, nil, ErrEmptyCart
		}
		var subtotal int64
		for _, li := range items {
			subtotal += li.UnitPrice * int64(li.Quantity)
		}
		sess.Items = items
		sess.Shipping = shipping
		sess.Address = ShippingAddress{Address: req.Address, City: req.City}
		sess.Totals = m.cfg.Pricing.MerchandiseTotals(subtotal, shipping.Price)

	case models.FlowExclusive:
		sess.Totals = m.cfg.Pricing.ContributionTotals(sess.Offering.Price)

	case models.FlowGift:
		sess.GiftAmount = giftAmount
		sess.GiftMessage = req.GiftMessage
		sess.Totals = m.cfg.Pricing.ContributionTotals(giftAmount)
	}

	sess.Step = StepPayment
	return sess.view(), nil, nil
}

// SubmitPayment validates the Payment step, runs settlement through the
// injected port and advances to Complete on approval. A declined or failed
// settlement returns the session to Payment with a flow-level error. The
// submit is rejected while a settlement is already in flight.
func (m *Manager) SubmitPayment(ctx context.Context, checkoutID string, req PaymentRequest) (*Session, FieldErrors, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutManager.SubmitPayment")
	defer span.End()

	m.mu.Lock()
	sess, ok := m.sessions[checkoutID]
	if !ok {
		m.mu.Unlock()
		return nil, nil, ErrNotFound
	}
	if sess.Step != StepPayment {
		m.mu.Unlock()
		return nil, nil, ErrWrongStep
	}
	if sess.processing {
		m.mu.Unlock()
		return nil, nil, ErrProcessing
	}

	fe := FieldErrors{}
	var mpesaPhone string
	switch req.PaymentMethod {
	case models.PaymentMethodMpesa:
		normalized, valid := NormalizeMpesaPhone(req.MpesaPhone)
		if req.MpesaPhone == "" {
			fe.Add("mpesa_phone", "Please enter your M-PESA phone number")
		} else if !valid {
			fe.Add("mpesa_phone", "Please enter a valid M-PESA phone number (e.g., 07XX XXX XXX)")
		} else {
			mpesaPhone = normalized
		}
	case models.PaymentMethodCard:
		for field, msg := range ValidateCard(req.CardNumber, req.CardName, req.CardExpiry, req.CardCVC) {
			fe.Add(field, msg)
		}
	default:
		fe.Add("payment_method", "Please select a payment method")
	}
	if !req.PaymentTermsAgreed {
		fe.Add("payment_terms", "You must agree to the payment terms")
	}

	if !fe.Empty() {
		view := sess.view()
		m.mu.Unlock()
		util.CheckoutValidationFailures.WithLabelValues("payment").Inc()
		return view, fe, nil
	}

	sess.processing = true
	sess.FlowError = ""
	sess.PaymentMethod = req.PaymentMethod
	sess.MpesaPhone = mpesaPhone
	settleReq := payment.Request{
		CheckoutID: sess.ID,
		Method:     req.PaymentMethod,
		Amount:     sess.Totals.Total,
		Phone:      mpesaPhone,
	}
	m.mu.Unlock()

	result, settleErr := m.settler.Settle(ctx, settleReq)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The flow may have been torn down while settlement was in flight;
	// its result must not be written anywhere.
	if sess.closed {
		return nil, nil, ErrNotFound
	}
	sess.processing = false

	if settleErr != nil {
		m.logger.Error("Settlement failed",
			zap.String("checkout_id", sess.ID),
			zap.Error(settleErr))
		sess.FlowError = "Payment could not be processed. Please try again."
		return sess.view(), nil, nil
	}

	if !result.Approved {
		m.publishDeclined(ctx, sess, result.Reason)
		sess.FlowError = "Payment was declined. Please try again or use a different payment method."
		return sess.view(), nil, nil
	}

	sess.ProviderTxID = result.TxID
	sess.ConfirmationCode = fmt.Sprintf("%s%d", confirmationPrefix(sess.FlowType), rand.Intn(1000000))
	sess.Step = StepComplete

	util.CheckoutsCompletedTotal.WithLabelValues(sess.FlowType).Inc()
	m.logger.Info("Checkout completed",
		zap.String("checkout_id", sess.ID),
		zap.String("confirmation_code", sess.ConfirmationCode),
		zap.Int64("total", sess.Totals.Total))

	m.publishCompleted(ctx, sess)
	m.clearPurchasedItems(ctx, sess)

	return sess.view(), nil, nil
}

func (m *Manager) clearPurchasedItems(ctx context.Context, sess *Session) {
	var kind string
	switch sess.FlowType {
	case models.FlowTicket:
		kind = models.KindTicket
	case models.FlowMerchandise:
		kind = models.KindMerchandise
	default:
		return
	}
	if _, err := m.carts.ClearKind(ctx, sess.CartID, kind); err != nil {
		m.logger.Error("Failed to clear purchased items",
			zap.String("checkout_id", sess.ID),
			zap.Error(err))
	}
}

func (m *Manager) publishCompleted(ctx context.Context, sess *Session) {
	items := make([]models.LineItemData, 0, len(sess.Items))
	for _, li := range sess.Items {
		items = append(items, models.LineItemData{
			Kind:      li.Kind,
			Name:      li.Name,
			UnitPrice: li.UnitPrice,
			Quantity:  li.Quantity,
		})
	}

	approved := &models.PaymentApprovedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePaymentApproved),
		CheckoutID: sess.ID,
		Amount:     sess.Totals.Total,
		TxID:       sess.ProviderTxID,
	}
	if err := m.publisher.PublishPaymentApproved(ctx, approved); err != nil {
		m.logger.Error("Failed to publish PaymentApproved event", zap.Error(err))
	}

	completed := &models.CheckoutCompletedEvent{
		BaseEvent:        newBaseEvent(models.EventTypeCheckoutCompleted),
		CheckoutID:       sess.ID,
		FlowType:         sess.FlowType,
		ConfirmationCode: sess.ConfirmationCode,
		CustomerName:     sess.Contact.Name,
		CustomerEmail:    sess.Contact.Email,
		CustomerPhone:    sess.Contact.Phone,
		PaymentMethod:    sess.PaymentMethod,
		ProviderTxID:     sess.ProviderTxID,
		Subtotal:         sess.Totals.Subtotal,
		ShippingCost:     sess.Totals.ShippingCost,
		Fee:              sess.Totals.Fee,
		Total:            sess.Totals.Total,
		Items:            items,
	}
	if err := m.publisher.PublishCheckoutCompleted(ctx, completed); err != nil {
		m.logger.Error("Failed to publish CheckoutCompleted event", zap.Error(err))
	}
}

func (m *Manager) publishDeclined(ctx context.Context, sess *Session, reason string) {
	event := &models.PaymentDeclinedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePaymentDeclined),
		CheckoutID: sess.ID,
		Amount:     sess.Totals.Total,
		Reason:     reason,
	}
	if err := m.publisher.PublishPaymentDeclined(ctx, event); err != nil {
		m.logger.Error("Failed to publish PaymentDeclined event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func confirmationPrefix(flowType string) string {
	switch flowType {
	case models.FlowTicket:
		return "TKT-"
	case models.FlowMerchandise:
		return "ORD-"
	case models.FlowExclusive:
		return "EXC-"
	default:
		return "GIFT-"
	}
}

func findTicketType(types []models.TicketType, id int64) (models.TicketType, bool) {
	for _, tt := range types {
		if tt.ID == id {
			return tt, true
		}
	}
	return models.TicketType{}, false
}
