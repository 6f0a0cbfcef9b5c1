package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request describes one settlement attempt.
type Request struct {
	CheckoutID string
	Method     string
	Amount     int64
	// Phone is set for mobile-money settlements, normalized before it
	// reaches the gateway.
	Phone string
}

// Result is the terminal outcome of a settlement attempt.
type Result struct {
	Approved bool
	TxID     string
	Reason   string
}

// Settler finalizes a payment. The production-shaped outcomes are approved
// and declined; transport failures are returned as errors.
type Settler interface {
	Settle(ctx context.Context, req Request) (Result, error)
}

// SimulatedGateway settles payments against nothing: it waits a fixed delay
// and approves with a configurable rate. There is no real payment provider
// behind the site.
type SimulatedGateway struct {
	delay       time.Duration
	successRate float64
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedGateway creates a simulated settlement gateway.
func NewSimulatedGateway(delay time.Duration, successRate float64) *SimulatedGateway {
	return &SimulatedGateway{
		delay:       delay,
		successRate: successRate,
		logger:      util.GetLogger(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Settle waits the simulated settlement delay and reports the outcome.
func (g *SimulatedGateway) Settle(ctx context.Context, req Request) (Result, error) {
	ctx, span := util.StartSpan(ctx, "SimulatedGateway.Settle")
	defer span.End()

	util.SettlementAttemptsTotal.Inc()
	start := time.Now()
	defer func() {
		util.SettlementLatency.Observe(time.Since(start).Seconds())
	}()

	g.logger.Info("Processing settlement",
		zap.String("checkout_id", req.CheckoutID),
		zap.String("method", req.Method),
		zap.Int64("amount", req.Amount))

	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return Result{}, fmt.Errorf("settlement cancelled: %w", ctx.Err())
	}

	g.mu.Lock()
	approved := g.rng.Float64() < g.successRate
	g.mu.Unlock()

	if !approved {
		util.SettlementDeclinedTotal.Inc()
		g.logger.Warn("Settlement declined",
			zap.String("checkout_id", req.CheckoutID))
		return Result{Approved: false, Reason: "payment_declined"}, nil
	}

	txID := fmt.Sprintf("TXN-%s", uuid.New().String()[:8])
	g.logger.Info("Settlement approved",
		zap.String("checkout_id", req.CheckoutID),
		zap.String("tx_id", txID))

	return Result{Approved: true, TxID: txID}, nil
}
