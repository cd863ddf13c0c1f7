package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{"comma", "date,description,amount", ','},
		{"semicolon", "data mov.;descrição;valor", ';'},
		{"tab", "date\tdescription\tamount", '\t'},
		{"pipe", "date|description|amount", '|'},
		{"semicolon wins over comma in values", "a;b;c;1,50", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := detectDelimiter(tt.line)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestRoles(t *testing.T) {
	t.Run("english headers", func(t *testing.T) {
		roles := suggestRoles([]string{"Date", "Description", "Amount", "Currency", "Category"})
		assert.Equal(t, 0, roles.date)
		assert.Equal(t, 1, roles.desc)
		assert.Equal(t, 2, roles.amount)
		assert.Equal(t, 3, roles.currency)
		assert.Equal(t, 4, roles.category)
		assert.False(t, roles.doubleEntry)
	})

	t.Run("portuguese double entry", func(t *testing.T) {
		roles := suggestRoles([]string{"Data Mov.", "Descrição", "Débito", "Crédito", "Saldo"})
		assert.Equal(t, 0, roles.date)
		assert.Equal(t, 1, roles.desc)
		assert.Equal(t, 2, roles.debit)
		assert.Equal(t, 3, roles.credit)
		assert.True(t, roles.doubleEntry)
		assert.Equal(t, -1, roles.amount)
	})

	t.Run("unknown headers bind nothing", func(t *testing.T) {
		roles := suggestRoles([]string{"foo", "bar", "baz"})
		assert.Equal(t, -1, roles.date)
		assert.Equal(t, -1, roles.desc)
	})
}

func TestAmountStyle(t *testing.T) {
	tests := []struct {
		val  string
		want int
	}{
		{"1.234,56", 1},
		{"1,234.56", -1},
		{"4,50", 1},
		{"4.50", -1},
		{"-1.500,00", 1},
		{"1234", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			assert.Equal(t, tt.want, amountStyle(tt.val))
		})
	}
}

func TestProbeDialect(t *testing.T) {
	roles := columnRoles{date: 0, desc: 1, amount: 2, debit: -1, credit: -1, currency: -1, category: -1}

	t.Run("european samples", func(t *testing.T) {
		d := probeDialect([][]string{
			{"15/01/2024", "CONTINENTE", "-12,30"},
			{"16/01/2024", "GALP", "-45,00"},
		}, roles)
		assert.True(t, d.EuropeanKnown)
		assert.True(t, d.European)
		assert.True(t, d.DayFirstKnown)
		assert.True(t, d.DayFirst)
	})

	t.Run("US samples", func(t *testing.T) {
		d := probeDialect([][]string{
			{"01/15/2024", "WHOLE FOODS", "-12.30"},
			{"01/16/2024", "SHELL", "-45.00"},
		}, roles)
		assert.True(t, d.EuropeanKnown)
		assert.False(t, d.European)
		assert.True(t, d.DayFirstKnown)
		assert.False(t, d.DayFirst)
	})

	t.Run("euro symbol sets currency hint", func(t *testing.T) {
		d := probeDialect([][]string{
			{"15/01/2024", "CAFE", "€4,50"},
		}, roles)
		assert.Equal(t, "EUR", d.CurrencyHint)
	})

	t.Run("ambiguous stays unknown", func(t *testing.T) {
		d := probeDialect([][]string{
			{"05/01/2024", "SHOP", "1234"},
		}, roles)
		assert.False(t, d.EuropeanKnown)
		assert.False(t, d.DayFirstKnown)
	})
}
