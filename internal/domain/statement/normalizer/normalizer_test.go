package normalizer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmcardoso/splitledger/internal/domain/statement/parser"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		cfg  Config
		want time.Time
	}{
		{"iso", "2024-01-15", Config{}, date(2024, 1, 15)},
		{"iso slashes", "2024/01/15", Config{}, date(2024, 1, 15)},
		{"day pins day-first", "15/01/2024", Config{}, date(2024, 1, 15)},
		{"month position over 12 pins month-first", "01/15/2024", Config{}, date(2024, 1, 15)},
		{"ambiguous uses locale hint day-first", "02/03/2024", Config{DayFirstLocale: true}, date(2024, 3, 2)},
		{"ambiguous uses locale hint month-first", "02/03/2024", Config{DayFirstLocale: false}, date(2024, 2, 3)},
		{"explicit day-first hint wins", "02/03/2024", Config{DateFormatHint: DateHintDayFirst}, date(2024, 3, 2)},
		{"explicit month-first hint wins", "02/03/2024", Config{DateFormatHint: DateHintMonthFirst}, date(2024, 2, 3)},
		{"dotted european", "15.01.2024", Config{}, date(2024, 1, 15)},
		{"two digit year", "15/01/24", Config{}, date(2024, 1, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.raw, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not a date", "32/01/2024", "15/13/2024", "31/02/2024", "15/01"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseDate(raw, Config{})
			assert.Error(t, err)
		})
	}
}

func TestNormalize(t *testing.T) {
	base := Config{DefaultCurrency: "EUR"}

	t.Run("debit-negative bank, expense comes out positive", func(t *testing.T) {
		tx, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "  Coffee   Shop ", Amount: "-4.50", Line: 2,
		}, Config{DefaultCurrency: "EUR", SignConvention: DebitNegative})

		require.Nil(t, perr)
		assert.Equal(t, date(2024, 1, 15), tx.Date)
		assert.Equal(t, "Coffee Shop", tx.Description)
		assert.Equal(t, int64(450), tx.AmountCents)
		assert.Equal(t, "EUR", tx.Currency)
		assert.Equal(t, 2, tx.SourceRef.Line)
	})

	t.Run("debit-positive bank keeps sign", func(t *testing.T) {
		tx, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "Groceries", Amount: "125.30",
		}, Config{DefaultCurrency: "EUR", SignConvention: DebitPositive})

		require.Nil(t, perr)
		assert.Equal(t, int64(12530), tx.AmountCents)
	})

	t.Run("debit column is an expense", func(t *testing.T) {
		tx, perr := Normalize(parser.RawRecord{
			Date: "15/01/2024", Description: "CONTINENTE", Debit: "125,30",
		}, Config{DefaultCurrency: "EUR", European: true, DayFirstLocale: true})

		require.Nil(t, perr)
		assert.Equal(t, int64(12530), tx.AmountCents)
	})

	t.Run("credit column is rejected as non-expense", func(t *testing.T) {
		_, perr := Normalize(parser.RawRecord{
			Date: "15/01/2024", Description: "ORDENADO", Credit: "1.500,00", Line: 3,
		}, Config{DefaultCurrency: "EUR", European: true, DayFirstLocale: true})

		require.NotNil(t, perr)
		assert.Equal(t, 3, perr.Line)
		assert.Equal(t, "amount", perr.Column)
	})

	t.Run("refund under debit-negative is rejected", func(t *testing.T) {
		_, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "REFUND ZARA", Amount: "12.00",
		}, Config{DefaultCurrency: "EUR", SignConvention: DebitNegative})

		require.NotNil(t, perr)
		assert.Equal(t, "amount", perr.Column)
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		_, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "NOOP", Amount: "0.00",
		}, base)
		require.NotNil(t, perr)
	})

	t.Run("non-numeric amount is a parse error", func(t *testing.T) {
		_, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "BROKEN", Amount: "abc", Line: 7,
		}, base)

		require.NotNil(t, perr)
		assert.Equal(t, 7, perr.Line)
		assert.Equal(t, "amount", perr.Column)
	})

	t.Run("missing description is a parse error", func(t *testing.T) {
		_, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "   ", Amount: "-4.50",
		}, base)

		require.NotNil(t, perr)
		assert.Equal(t, "description", perr.Column)
	})

	t.Run("row currency overrides default", func(t *testing.T) {
		tx, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "HOTEL", Amount: "-80.00", Currency: "usd",
		}, Config{DefaultCurrency: "EUR", SignConvention: DebitNegative})

		require.Nil(t, perr)
		assert.Equal(t, "USD", tx.Currency)
	})

	t.Run("symbol in amount sets currency", func(t *testing.T) {
		tx, perr := Normalize(parser.RawRecord{
			Date: "2024-01-15", Description: "LUNCH", Amount: "-£12.00",
		}, Config{DefaultCurrency: "EUR", SignConvention: DebitNegative})

		require.Nil(t, perr)
		assert.Equal(t, "GBP", tx.Currency)
	})
}

// Normalizing a transaction rendered back to raw text yields an equivalent
// transaction.
func TestNormalize_RoundTrip(t *testing.T) {
	cfg := Config{DefaultCurrency: "EUR", SignConvention: DebitPositive}

	original, perr := Normalize(parser.RawRecord{
		Date: "2024-02-29", Description: "IKEA ALFRAGIDE", Amount: "249.99",
	}, cfg)
	require.Nil(t, perr)

	again, perr := Normalize(parser.RawRecord{
		Date:        original.Date.Format("2006-01-02"),
		Description: original.Description,
		Amount:      formatCents(original.AmountCents),
		Currency:    original.Currency,
	}, cfg)
	require.Nil(t, perr)

	assert.Equal(t, original.Date, again.Date)
	assert.Equal(t, original.Description, again.Description)
	assert.Equal(t, original.AmountCents, again.AmountCents)
	assert.Equal(t, original.Currency, again.Currency)
}

func formatCents(cents int64) string {
	whole, frac := cents/100, cents%100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}
