// Package pricing computes cart and order totals and converts local prices
// into the settlement currency a payment processor charges in.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
)

// Line is anything priced per unit.
type Line interface {
	LinePrice() decimal.Decimal
	LineQuantity() int
}

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// Quote is the full price breakdown of an order.
type Quote struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	Currency         string          `json:"currency"`
	SettlementAmount decimal.Decimal `json:"settlement_amount"`
	SettlementCurr   string          `json:"settlement_currency"`
	ItemCount        int             `json:"item_count"`
}

// Charge is an amount ready to send to a processor.
type Charge struct {
	Amount     decimal.Decimal
	Currency   string
	MinorUnits int64
	Original   decimal.Decimal
	OrigCurr   string
}

func CartTotals[L Line](lines []L) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.LinePrice().Mul(decimal.NewFromInt(int64(line.LineQuantity()))))
		count += line.LineQuantity()
	}
	return Totals{Subtotal: subtotal, ItemCount: count}
}

func OrderTotal(subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	return subtotal.Add(deliveryFee)
}

// ConvertCurrency divides by rate and rounds to cents.
func ConvertCurrency(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("exchange rate must be positive, got %s", rate)
	}
	return amount.Div(rate).Round(2), nil
}

type Calculator struct {
	DeliveryFee        decimal.Decimal
	ExchangeRate       decimal.Decimal
	MinimumCharge      decimal.Decimal
	LocalCurrency      string
	SettlementCurrency string
}

func (c Calculator) Quote(totals Totals) (Quote, error) {
	grand := OrderTotal(totals.Subtotal, c.DeliveryFee)
	settlement, err := ConvertCurrency(grand, c.ExchangeRate)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Subtotal:         totals.Subtotal,
		DeliveryFee:      c.DeliveryFee,
		GrandTotal:       grand,
		Currency:         c.LocalCurrency,
		SettlementAmount: settlement,
		SettlementCurr:   c.SettlementCurrency,
		ItemCount:        totals.ItemCount,
	}, nil
}

// ChargeAmount validates amount, converts it when it is in the local
// currency, and rejects anything below the processor minimum before any
// remote call is made.
func (c Calculator) ChargeAmount(amount decimal.Decimal, currency string) (Charge, error) {
	if !amount.IsPositive() {
		return Charge{}, apperr.Validation("amount", "invalid amount")
	}
	currency = strings.ToLower(currency)
	if currency == "" {
		currency = c.SettlementCurrency
	}

	raw := amount
	if currency == c.LocalCurrency {
		if !c.ExchangeRate.IsPositive() {
			return Charge{}, fmt.Errorf("exchange rate must be positive, got %s", c.ExchangeRate)
		}
		raw = amount.Div(c.ExchangeRate)
	} else if currency != c.SettlementCurrency {
		return Charge{}, apperr.Validation("currency", "unsupported currency "+currency)
	}

	// The minimum applies before rounding to cents.
	if raw.LessThan(c.MinimumCharge) {
		return Charge{}, apperr.Validation("amount",
			fmt.Sprintf("amount too small, minimum order is %s %s", c.MinimumCharge.StringFixed(2), strings.ToUpper(c.SettlementCurrency)))
	}

	final := raw.Round(2)
	return Charge{
		Amount:     final,
		Currency:   c.SettlementCurrency,
		MinorUnits: final.Shift(2).Round(0).IntPart(),
		Original:   amount,
		OrigCurr:   currency,
	}, nil
}
