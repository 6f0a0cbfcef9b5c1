package broker

import (
	"context"
	"encoding/json"
	"testing"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestHandleMessageRoutesCheckoutCompleted(t *testing.T) {
	handler := NewEventHandler()

	var received *models.CheckoutCompletedEvent
	handler.OnCheckoutCompleted(func(_ context.Context, e *models.CheckoutCompletedEvent) error {
		received = e
		return nil
	})

	event := &models.CheckoutCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeCheckoutCompleted,
		},
		CheckoutID:       "chk-1",
		ConfirmationCode: "TKT-123456",
		Total:            8050,
	}

	err := handler.HandleMessage(context.Background(), message(t, event))
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, "chk-1", received.CheckoutID)
	assert.Equal(t, "TKT-123456", received.ConfirmationCode)
	assert.Equal(t, int64(8050), received.Total)
}

func TestHandleMessageRoutesPaymentApproved(t *testing.T) {
	handler := NewEventHandler()

	var received *models.PaymentApprovedEvent
	handler.OnPaymentApproved(func(_ context.Context, e *models.PaymentApprovedEvent) error {
		received = e
		return nil
	})

	event := &models.PaymentApprovedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-5",
			EventType: models.EventTypePaymentApproved,
		},
		CheckoutID: "chk-5",
		Amount:     8050,
		TxID:       "TXN-abc12345",
	}

	err := handler.HandleMessage(context.Background(), message(t, event))
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, "chk-5", received.CheckoutID)
	assert.Equal(t, "TXN-abc12345", received.TxID)
}

func TestHandleMessageRoutesPaymentDeclined(t *testing.T) {
	handler := NewEventHandler()

	var received *models.PaymentDeclinedEvent
	handler.OnPaymentDeclined(func(_ context.Context, e *models.PaymentDeclinedEvent) error {
		received = e
		return nil
	})

	event := &models.PaymentDeclinedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-2",
			EventType: models.EventTypePaymentDeclined,
		},
		CheckoutID: "chk-2",
		Reason:     "payment_declined",
	}

	err := handler.HandleMessage(context.Background(), message(t, event))
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, "payment_declined", received.Reason)
}

func TestHandleMessageIgnoresUnregisteredAndUnknownTypes(t *testing.T) {
	handler := NewEventHandler()

	// No handlers registered: known type is silently skipped
	event := &models.PaymentApprovedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-3", EventType: models.EventTypePaymentApproved},
	}
	assert.NoError(t, handler.HandleMessage(context.Background(), message(t, event)))

	// Unknown type is logged and skipped
	unknown := models.BaseEvent{EventID: "evt-4", EventType: "SOMETHING_ELSE"}
	assert.NoError(t, handler.HandleMessage(context.Background(), message(t, unknown)))

	// Garbage payload is an error
	assert.Error(t, handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("{bad")}))
}
