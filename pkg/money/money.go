// Package money provides currency-safe financial arithmetic using integer
// cents and ISO-4217 currency codes. Statement amounts arrive as free-form
// text in US or European styles; ParseCents is the single entry point that
// turns them into minor units without float drift.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	BRL = "BRL"
	CHF = "CHF"
)

var currencySymbols = []string{"R$", "$", "€", "£", "¥", "₹"}

// Money represents a monetary value with currency. It wraps go-money for
// safe arithmetic and shopspring/decimal for precise conversions.
type Money struct {
	m *money.Money
}

// New creates a Money value from cents (minor units) and a currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// Zero returns a zero Money value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// NewFromDecimal creates Money from a decimal value, rounding to the
// currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()
	return New(cents, currencyCode)
}

// ParseCents parses a statement amount string into minor units.
// Accepts "1,234.56", "1.234,56" (european), "-4.50", "(4.50)" and amounts
// carrying a currency symbol. Returns the symbol-derived currency code,
// empty when none was present.
func ParseCents(raw string, european bool) (int64, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "", errors.New("empty amount")
	}

	currency := ""
	for _, sym := range currencySymbols {
		if strings.Contains(s, sym) {
			currency = symbolToCode(sym)
			s = strings.ReplaceAll(s, sym, "")
			break
		}
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	// Accounting style: (4.50) means -4.50.
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")

	if european {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, currency, fmt.Errorf("invalid amount %q", raw)
	}
	if negative {
		d = d.Neg()
	}

	cents := d.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return cents, currency, nil
}

func symbolToCode(sym string) string {
	switch sym {
	case "€":
		return EUR
	case "£":
		return GBP
	case "R$":
		return BRL
	case "¥":
		return "JPY"
	case "₹":
		return "INR"
	default:
		return USD
	}
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero returns true if the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsPositive returns true if the amount is greater than zero.
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// IsNegative returns true if the amount is less than zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Abs returns the absolute value.
func (m *Money) Abs() *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}
	return &Money{m: m.m.Absolute()}
}

// Negate returns the negated value.
func (m *Money) Negate() *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}
	return &Money{m: m.m.Negative()}
}

// Add adds two Money values. Returns an error if currencies differ.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Equals returns true if both values have the same amount and currency.
func (m *Money) Equals(other *Money) bool {
	if m == nil || m.m == nil {
		return other == nil || other.m == nil || other.IsZero()
	}
	if other == nil || other.m == nil {
		return m.IsZero()
	}
	eq, _ := m.m.Equals(other.m)
	return eq
}

// Split divides money into n equal parts, distributing the remainder cent
// by cent to the leading parts so no money is lost.
func (m *Money) Split(n int) ([]*Money, error) {
	if m == nil || m.m == nil {
		return nil, errors.New("cannot split nil money")
	}
	if n <= 0 {
		return nil, errors.New("n must be positive")
	}
	parts, err := m.m.Split(n)
	if err != nil {
		return nil, err
	}
	result := make([]*Money, len(parts))
	for i, p := range parts {
		result[i] = &Money{m: p}
	}
	return result, nil
}

// Allocate splits money according to relative weights. Weights don't need
// to sum to anything in particular.
func (m *Money) Allocate(weights []int) ([]*Money, error) {
	if m == nil || m.m == nil {
		return nil, errors.New("cannot allocate nil money")
	}
	parts, err := m.m.Allocate(weights...)
	if err != nil {
		return nil, err
	}
	result := make([]*Money, len(parts))
	for i, p := range parts {
		result[i] = &Money{m: p}
	}
	return result, nil
}

// ToDecimal converts to a decimal value in major units.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	d := decimal.NewFromInt(m.m.Amount())
	return d.Div(decimal.New(1, int32(m.m.Currency().Fraction)))
}

// Display returns a formatted string for display, e.g. "$1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// String returns the amount as a decimal string, e.g. "1234.56".
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// MarshalJSON encodes amount, currency and display form.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]any{
		"amount":   m.Amount(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}

// UnmarshalJSON decodes the amount/currency pair produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.m = money.New(v.Amount, v.Currency)
	return nil
}
