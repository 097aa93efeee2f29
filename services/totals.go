package services

import (
	"github.com/agromarket/backend/models"

	"github.com/shopspring/decimal"
)

var (
	// flatShippingFee applies to any non-empty order.
	flatShippingFee = decimal.RequireFromString("5.99")
	// taxRate is the flat 8% sales tax.
	taxRate = decimal.RequireFromString("0.08")
)

// Totals is the monetary breakdown of a cart or order.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ComputeTotals derives order totals from priced cart lines. Shipping is a
// flat fee waived on an empty subtotal; tax is rounded to cents before it
// enters the grand total, so grand_total == subtotal + shipping + tax holds
// exactly on the stored values.
func ComputeTotals(lines []models.CartLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = flatShippingFee
	}
	tax := subtotal.Mul(taxRate).Round(2)

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}
}
