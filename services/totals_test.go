package services_test

import (
	"testing"

	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func pricedLine(t *testing.T, price string, qty int) models.CartLine {
	t.Helper()
	p := decimal.RequireFromString(price)
	return models.CartLine{
		Product:   models.Product{Price: p},
		Quantity:  qty,
		LineTotal: p.Mul(decimal.NewFromInt(int64(qty))).Round(2),
	}
}

func TestComputeTotals(t *testing.T) {
	totals := services.ComputeTotals([]models.CartLine{pricedLine(t, "3.99", 2)})

	assert.Equal(t, "7.98", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "5.99", totals.Shipping.StringFixed(2))
	assert.Equal(t, "0.64", totals.Tax.StringFixed(2))
	assert.Equal(t, "14.61", totals.GrandTotal.StringFixed(2))
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := services.ComputeTotals(nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Shipping.IsZero(), "shipping is waived on an empty subtotal")
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestComputeTotals_MultipleLine(t *testing.T) {
	totals := services.ComputeTotals([]models.CartLine{
		pricedLine(t, "12.50", 1),
		pricedLine(t, "0.99", 3),
		pricedLine(t, "199.95", 2),
	})

	assert.Equal(t, "415.37", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "33.23", totals.Tax.StringFixed(2))
	assert.Equal(t, "454.59", totals.GrandTotal.StringFixed(2))
}

// The grand total must equal the sum of its stored parts exactly, not just
// after another rounding pass.
func TestComputeTotals_BreakdownIdentity(t *testing.T) {
	prices := []string{"0.01", "1.99", "3.33", "7.77", "123.45", "999.99"}
	for _, price := range prices {
		for qty := 1; qty <= 7; qty++ {
			totals := services.ComputeTotals([]models.CartLine{pricedLine(t, price, qty)})
			sum := totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)
			assert.True(t, totals.GrandTotal.Equal(sum),
				"price=%s qty=%d: grand=%s parts=%s", price, qty,
				totals.GrandTotal.String(), sum.String())
		}
	}
}
