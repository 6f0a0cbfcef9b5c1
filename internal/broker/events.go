package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing purchase lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCheckoutCompleted publishes CheckoutCompleted event
func (ep *EventPublisher) PublishCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	key := fmt.Sprintf("checkout-%s", event.CheckoutID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentApproved publishes PaymentApproved event
func (ep *EventPublisher) PublishPaymentApproved(ctx context.Context, event *models.PaymentApprovedEvent) error {
	key := fmt.Sprintf("checkout-%s", event.CheckoutID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentDeclined publishes PaymentDeclined event
func (ep *EventPublisher) PublishPaymentDeclined(ctx context.Context, event *models.PaymentDeclinedEvent) error {
	key := fmt.Sprintf("checkout-%s", event.CheckoutID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onCheckoutCompleted func(context.Context, *models.CheckoutCompletedEvent) error
	onPaymentApproved   func(context.Context, *models.PaymentApprovedEvent) error
	onPaymentDeclined   func(context.Context, *models.PaymentDeclinedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnCheckoutCompleted registers a handler for CheckoutCompleted events
func (eh *EventHandler) OnCheckoutCompleted(handler func(context.Context, *models.CheckoutCompletedEvent) error) {
	eh.onCheckoutCompleted = handler
}

// OnPaymentApproved registers a handler for PaymentApproved events
func (eh *EventHandler) OnPaymentApproved(handler func(context.Context, *models.PaymentApprovedEvent) error) {
	eh.onPaymentApproved = handler
}

// OnPaymentDeclined registers a handler for PaymentDeclined events
func (eh *EventHandler) OnPaymentDeclined(handler func(context.Context, *models.PaymentDeclinedEvent) error) {
	eh.onPaymentDeclined = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeCheckoutCompleted:
		if eh.onCheckoutCompleted != nil {
			var event models.CheckoutCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CheckoutCompleted event: %w", err)
			}
			return eh.onCheckoutCompleted(ctx, &event)
		}

	case models.EventTypePaymentApproved:
		if eh.onPaymentApproved != nil {
			var event models.PaymentApprovedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentApproved event: %w", err)
			}
			return eh.onPaymentApproved(ctx, &event)
		}

	case models.EventTypePaymentDeclined:
		if eh.onPaymentDeclined != nil {
			var event models.PaymentDeclinedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentDeclined event: %w", err)
			}
			return eh.onPaymentDeclined(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
