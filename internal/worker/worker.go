package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// PurchaseWorker consumes checkout events and records completed purchases.
type PurchaseWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	recorder     *Recorder
}

// NewPurchaseWorker creates a new purchase worker
func NewPurchaseWorker(consumer *broker.Consumer, st *store.Store, logger *zap.Logger) *PurchaseWorker {
	recorder := &Recorder{store: st, logger: logger}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCheckoutCompleted(recorder.HandleCheckoutCompleted)
	eventHandler.OnPaymentApproved(recorder.HandlePaymentApproved)
	eventHandler.OnPaymentDeclined(recorder.HandlePaymentDeclined)

	return &PurchaseWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		recorder:     recorder,
	}
}

// Start starts the worker
func (w *PurchaseWorker) Start(ctx context.Context) error {
	log.Println("Starting purchase worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PurchaseWorker) Stop() error {
	log.Println("Stopping purchase worker...")
	return w.consumer.Close()
}

// Recorder turns checkout events into purchase rows. Events may be
// redelivered, so every handler checks the processed-events table first.
type Recorder struct {
	store  *store.Store
	logger *zap.Logger
}

// HandleCheckoutCompleted persists a purchase record for a completed checkout.
func (r *Recorder) HandleCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	processed, err := r.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		r.logger.Info("Skipping already processed event",
			zap.String("event_id", event.EventID),
			zap.String("checkout_id", event.CheckoutID))
		return nil
	}

	purchase := &models.Purchase{
		ConfirmationCode: event.ConfirmationCode,
		FlowType:         event.FlowType,
		CustomerName:     event.CustomerName,
		CustomerEmail:    event.CustomerEmail,
		CustomerPhone:    event.CustomerPhone,
		PaymentMethod:    event.PaymentMethod,
		ProviderTxID:     event.ProviderTxID,
		Subtotal:         event.Subtotal,
		ShippingCost:     event.ShippingCost,
		Fee:              event.Fee,
		Total:            event.Total,
	}

	if err := r.store.CreatePurchase(ctx, purchase); err != nil {
		r.logger.Error("Failed to record purchase",
			zap.String("checkout_id", event.CheckoutID),
			zap.Error(err))
		return err
	}

	if err := r.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		return err
	}

	util.PurchasesRecordedTotal.WithLabelValues(event.FlowType).Inc()
	r.logger.Info("Purchase recorded",
		zap.String("confirmation_code", event.ConfirmationCode),
		zap.String("flow_type", event.FlowType),
		zap.Int64("total", event.Total))
	return nil
}

// HandlePaymentApproved only logs; the purchase row is written from the
// richer CheckoutCompleted event.
func (r *Recorder) HandlePaymentApproved(ctx context.Context, event *models.PaymentApprovedEvent) error {
	processed, err := r.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	r.logger.Info("Payment approved",
		zap.String("checkout_id", event.CheckoutID),
		zap.Int64("amount", event.Amount),
		zap.String("tx_id", event.TxID))

	return r.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// HandlePaymentDeclined only logs; declined checkouts stay on the payment
// step and may be retried, so there is nothing to persist.
func (r *Recorder) HandlePaymentDeclined(ctx context.Context, event *models.PaymentDeclinedEvent) error {
	processed, err := r.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	r.logger.Warn("Payment declined",
		zap.String("checkout_id", event.CheckoutID),
		zap.Int64("amount", event.Amount),
		zap.String("reason", event.Reason))

	return r.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
