package checkout

import "math"

// ShippingMethod is one merchandise delivery option.
type ShippingMethod struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Price             int64  `json:"price"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

var shippingMethods = []ShippingMethod{
	{ID: "standard", Name: "Standard Shipping", Price: 599, EstimatedDelivery: "5-7 business days"},
	{ID: "express", Name: "Express Shipping", Price: 1299, EstimatedDelivery: "2-3 business days"},
	{ID: "overnight", Name: "Overnight Shipping", Price: 2499, EstimatedDelivery: "Next business day"},
}

// ShippingMethods lists the available merchandise delivery options.
func ShippingMethods() []ShippingMethod {
	out := make([]ShippingMethod, len(shippingMethods))
	copy(out, shippingMethods)
	return out
}

// ShippingMethodByID looks up a shipping method.
func ShippingMethodByID(id string) (ShippingMethod, bool) {
	for _, m := range shippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// Pricing carries the fee rates applied per flow type. Amounts are whole KES;
// fees are rounded to the nearest unit and the grand total is built from the
// rounded fee so the itemization always sums exactly.
type Pricing struct {
	ServiceFeeRate    float64 // ticket checkouts
	TaxRate           float64 // merchandise checkouts
	ProcessingFeeRate float64 // exclusive offerings and gifts
}

// DefaultPricing returns the site's rates.
func DefaultPricing() Pricing {
	return Pricing{ServiceFeeRate: 0.15, TaxRate: 0.08, ProcessingFeeRate: 0.03}
}

// Totals is the itemized breakdown shown at Payment and Complete.
type Totals struct {
	Subtotal     int64  `json:"subtotal"`
	ShippingCost int64  `json:"shipping_cost,omitempty"`
	Fee          int64  `json:"fee"`
	FeeLabel     string `json:"fee_label"`
	Total        int64  `json:"total"`
}

func roundedFee(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

// TicketTotals applies the service fee to a ticket subtotal.
func (p Pricing) TicketTotals(subtotal int64) Totals {
	fee := roundedFee(subtotal, p.ServiceFeeRate)
	return Totals{
		Subtotal: subtotal,
		Fee:      fee,
		FeeLabel: "Service Fee",
		Total:    subtotal + fee,
	}
}

// MerchandiseTotals applies shipping and tax to a merchandise subtotal.
func (p Pricing) MerchandiseTotals(subtotal, shipping int64) Totals {
	fee := roundedFee(subtotal, p.TaxRate)
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Fee:          fee,
		FeeLabel:     "Tax",
		Total:        subtotal + shipping + fee,
	}
}

// ContributionTotals applies the processing fee for exclusive offerings
// and gifts.
func (p Pricing) ContributionTotals(amount int64) Totals {
	fee := roundedFee(amount, p.ProcessingFeeRate)
	return Totals{
		Subtotal: amount,
		Fee:      fee,
		FeeLabel: "Processing Fee",
		Total:    amount + fee,
	}
}
