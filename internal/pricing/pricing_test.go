package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savory-orders/internal/apperr"
)

type line struct {
	price decimal.Decimal
	qty   int
}

func (l line) LinePrice() decimal.Decimal { return l.price }
func (l line) LineQuantity() int          { return l.qty }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCalculator() Calculator {
	return Calculator{
		DeliveryFee:        d("50"),
		ExchangeRate:       d("138"),
		MinimumCharge:      d("0.50"),
		LocalCurrency:      "etb",
		SettlementCurrency: "usd",
	}
}

func TestCartTotals(t *testing.T) {
	tests := []struct {
		name      string
		lines     []line
		subtotal  string
		itemCount int
	}{
		{name: "empty", lines: nil, subtotal: "0", itemCount: 0},
		{name: "single", lines: []line{{price: d("120.50"), qty: 1}}, subtotal: "120.5", itemCount: 1},
		{
			name:      "mixed",
			lines:     []line{{price: d("0.10"), qty: 3}, {price: d("250"), qty: 2}},
			subtotal:  "500.3",
			itemCount: 5,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			totals := CartTotals(testCase.lines)
			assert.True(t, d(testCase.subtotal).Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
			assert.Equal(t, testCase.itemCount, totals.ItemCount)
		})
	}
}

func TestOrderTotal_IsExactSum(t *testing.T) {
	subtotal := d("0.1").Add(d("0.2"))
	assert.True(t, d("50.3").Equal(OrderTotal(subtotal, d("50"))))
}

func TestConvertCurrency(t *testing.T) {
	converted, err := ConvertCurrency(d("1380"), d("138"))
	require.NoError(t, err)
	assert.Equal(t, "10.00", converted.StringFixed(2))

	converted, err = ConvertCurrency(d("100"), d("138"))
	require.NoError(t, err)
	assert.Equal(t, "0.72", converted.StringFixed(2))

	_, err = ConvertCurrency(d("100"), decimal.Zero)
	assert.Error(t, err)
}

func TestCalculator_Quote(t *testing.T) {
	quote, err := testCalculator().Quote(Totals{Subtotal: d("640"), ItemCount: 4})
	require.NoError(t, err)
	assert.True(t, d("690").Equal(quote.GrandTotal))
	assert.True(t, quote.GrandTotal.Equal(quote.Subtotal.Add(quote.DeliveryFee)))
	assert.Equal(t, "5.00", quote.SettlementAmount.StringFixed(2))
	assert.Equal(t, 4, quote.ItemCount)
}

func TestCalculator_ChargeAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		currency  string
		wantMinor int64
		wantErr   bool
	}{
		{name: "local converted", amount: "690", currency: "etb", wantMinor: 500},
		{name: "settlement passthrough", amount: "12.34", currency: "usd", wantMinor: 1234},
		{name: "default currency", amount: "1", currency: "", wantMinor: 100},
		{name: "ten cents equivalent", amount: "13.80", currency: "etb", wantErr: true},
		{name: "below minimum usd", amount: "0.49", currency: "usd", wantErr: true},
		{name: "rounds up to minimum", amount: "68.95", currency: "etb", wantErr: true},
		{name: "exactly minimum", amount: "69", currency: "etb", wantMinor: 50},
		{name: "zero", amount: "0", currency: "etb", wantErr: true},
		{name: "negative", amount: "-5", currency: "usd", wantErr: true},
		{name: "unknown currency", amount: "10", currency: "eur", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			charge, err := testCalculator().ChargeAmount(d(testCase.amount), testCase.currency)
			if testCase.wantErr {
				assert.True(t, apperr.IsValidation(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.wantMinor, charge.MinorUnits)
			assert.Equal(t, "usd", charge.Currency)
		})
	}
}
