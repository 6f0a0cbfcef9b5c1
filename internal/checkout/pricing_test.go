package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTotals(t *testing.T) {
	totals := DefaultPricing().TicketTotals(7000)

	assert.Equal(t, int64(7000), totals.Subtotal)
	assert.Equal(t, int64(1050), totals.Fee)
	assert.Equal(t, "Service Fee", totals.FeeLabel)
	assert.Equal(t, int64(8050), totals.Total)
}

func TestMerchandiseTotals(t *testing.T) {
	totals := DefaultPricing().MerchandiseTotals(7500, 1299)

	assert.Equal(t, int64(7500), totals.Subtotal)
	assert.Equal(t, int64(1299), totals.ShippingCost)
	assert.Equal(t, int64(600), totals.Fee)
	assert.Equal(t, "Tax", totals.FeeLabel)
	assert.Equal(t, int64(9399), totals.Total)
}

func TestContributionTotals(t *testing.T) {
	totals := DefaultPricing().ContributionTotals(500)

	assert.Equal(t, int64(500), totals.Subtotal)
	assert.Equal(t, int64(15), totals.Fee)
	assert.Equal(t, "Processing Fee", totals.FeeLabel)
	assert.Equal(t, int64(515), totals.Total)
}

func TestTotalsItemizationSumsExactly(t *testing.T) {
	// The grand total is built from the rounded fee, so the displayed
	// breakdown always adds up regardless of rounding direction.
	for _, subtotal := range []int64{1, 3, 333, 999, 12345} {
		totals := DefaultPricing().TicketTotals(subtotal)
		assert.Equal(t, totals.Subtotal+totals.Fee, totals.Total, "subtotal=%d", subtotal)

		totals = DefaultPricing().MerchandiseTotals(subtotal, 599)
		assert.Equal(t, totals.Subtotal+totals.ShippingCost+totals.Fee, totals.Total, "subtotal=%d", subtotal)
	}
}

func TestShippingMethodByID(t *testing.T) {
	m, found := ShippingMethodByID("express")
	require.True(t, found)
	assert.Equal(t, int64(1299), m.Price)

	_, found = ShippingMethodByID("teleport")
	assert.False(t, found)
}

func TestShippingMethodsPrices(t *testing.T) {
	methods := ShippingMethods()
	require.Len(t, methods, 3)
	assert.Equal(t, int64(599), methods[0].Price)
	assert.Equal(t, int64(1299), methods[1].Price)
	assert.Equal(t, int64(2499), methods[2].Price)
}
