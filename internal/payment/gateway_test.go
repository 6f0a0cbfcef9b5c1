package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleApproves(t *testing.T) {
	g := NewSimulatedGateway(time.Millisecond, 1.0)

	result, err := g.Settle(context.Background(), Request{
		CheckoutID: "chk-1",
		Method:     "MPESA",
		Amount:     8050,
		Phone:      "0712345678",
	})
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.True(t, strings.HasPrefix(result.TxID, "TXN-"))
	assert.Empty(t, result.Reason)
}

func TestSettleDeclines(t *testing.T) {
	g := NewSimulatedGateway(time.Millisecond, 0.0)

	result, err := g.Settle(context.Background(), Request{
		CheckoutID: "chk-1",
		Method:     "CARD",
		Amount:     9399,
	})
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Equal(t, "payment_declined", result.Reason)
	assert.Empty(t, result.TxID)
}

func TestSettleHonoursContextCancellation(t *testing.T) {
	g := NewSimulatedGateway(time.Minute, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Settle(ctx, Request{CheckoutID: "chk-1", Amount: 100})
	assert.Error(t, err)
}
