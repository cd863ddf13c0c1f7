// Package normalizer canonicalizes raw statement records into strict
// transactions: unambiguous date, positive expense cents, ISO currency,
// trimmed description. Records that cannot be made canonical become
// ParseErrors; nothing is guessed and nothing is silently dropped.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/fmcardoso/splitledger/internal/domain/statement/parser"
	"github.com/fmcardoso/splitledger/pkg/money"
)

// SignConvention describes how the source bank reports debits. Banks are
// inconsistent: some show withdrawals negative, some positive.
type SignConvention int

const (
	// DebitNegative: withdrawals appear negative (most card exports).
	DebitNegative SignConvention = iota
	// DebitPositive: withdrawals appear positive (many bank ledgers).
	DebitPositive
)

// Date format hints accepted by Config.DateFormatHint.
const (
	DateHintAuto       = "auto"
	DateHintMonthFirst = "MM/DD/YYYY"
	DateHintDayFirst   = "DD/MM/YYYY"
)

// Config controls normalization for one statement.
type Config struct {
	DateFormatHint  string // DateHintAuto, DateHintMonthFirst or DateHintDayFirst
	DayFirstLocale  bool   // tiebreak for ambiguous dates under DateHintAuto
	European        bool   // decimal-comma amounts
	SignConvention  SignConvention
	DefaultCurrency string // statement/account primary currency
}

// SourceRef points back at the RawRecord a transaction came from.
type SourceRef struct {
	Line int
	Page int
}

// Transaction is the canonical unit flowing through the rest of the
// pipeline. AmountCents is always positive: money the group spent.
type Transaction struct {
	Date        time.Time // midnight UTC, calendar date only
	Description string
	AmountCents int64
	Currency    string
	Category    string // raw category text from the file, may be empty
	SourceRef   SourceRef
}

// Normalize canonicalizes one raw record. The returned error is row-level
// and non-fatal; callers collect it and continue.
func Normalize(rec parser.RawRecord, cfg Config) (Transaction, *parser.ParseError) {
	fail := func(column, message, raw string) (Transaction, *parser.ParseError) {
		return Transaction{}, &parser.ParseError{
			Line: rec.Line, Page: rec.Page, Column: column, Message: message, Raw: raw,
		}
	}

	date, err := ParseDate(rec.Date, cfg)
	if err != nil {
		return fail("date", err.Error(), rec.Date)
	}

	desc := CleanDescription(rec.Description)
	if desc == "" {
		return fail("description", "missing description", rec.Description)
	}

	cents, rowCurrency, err := normalizeAmount(rec, cfg)
	if err != nil {
		return fail("amount", err.Error(), coalesceRaw(rec))
	}
	if cents <= 0 {
		return fail("amount", "non-expense amount (credit or zero)", coalesceRaw(rec))
	}

	currency := cfg.DefaultCurrency
	if code, ok := normalizeCurrency(rec.Currency); ok {
		currency = code
	} else if rowCurrency != "" {
		currency = rowCurrency
	}

	return Transaction{
		Date:        date,
		Description: desc,
		AmountCents: cents,
		Currency:    currency,
		Category:    strings.TrimSpace(rec.Category),
		SourceRef:   SourceRef{Line: rec.Line, Page: rec.Page},
	}, nil
}

// normalizeAmount resolves the three amount shapes (single column,
// debit-only, credit-only) into signed expense cents.
func normalizeAmount(rec parser.RawRecord, cfg Config) (int64, string, error) {
	if rec.Amount != "" {
		cents, currency, err := money.ParseCents(rec.Amount, cfg.European)
		if err != nil {
			return 0, "", err
		}
		// Normalize to "positive = money spent".
		if cfg.SignConvention == DebitNegative {
			cents = -cents
		}
		return cents, currency, nil
	}

	if rec.Debit != "" {
		cents, currency, err := money.ParseCents(rec.Debit, cfg.European)
		if err != nil {
			return 0, "", err
		}
		if cents < 0 {
			cents = -cents
		}
		return cents, currency, nil
	}

	if rec.Credit != "" {
		cents, currency, err := money.ParseCents(rec.Credit, cfg.European)
		if err != nil {
			return 0, "", err
		}
		if cents < 0 {
			cents = -cents
		}
		return -cents, currency, nil // money in, rejected by the invariant
	}

	return 0, "", fmt.Errorf("no amount found")
}

// ParseDate parses a statement date. An explicit hint is tried first; under
// auto, values over 12 in either slot pin DD/MM vs MM/DD, otherwise the
// account locale hint decides. Unparseable dates are errors, never guesses.
func ParseDate(raw string, cfg Config) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	switch cfg.DateFormatHint {
	case DateHintMonthFirst:
		return parseNumericDate(s, false)
	case DateHintDayFirst:
		return parseNumericDate(s, true)
	}

	// ISO and other year-first forms are unambiguous.
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006.01.02", "2006-01-02T15:04:05Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), nil
		}
	}

	first, second := numericDateParts(s)
	switch {
	case first > 12 && first <= 31:
		return parseNumericDate(s, true)
	case second > 12 && second <= 31:
		return parseNumericDate(s, false)
	default:
		return parseNumericDate(s, cfg.DayFirstLocale)
	}
}

// parseNumericDate handles a/b/y dates with /, - or . separators and 2- or
// 4-digit years, validating that the calendar date exists.
func parseNumericDate(s string, dayFirst bool) (time.Time, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
	}

	a, b, y := leadingInt(parts[0]), leadingInt(parts[1]), leadingInt(parts[2])
	if len(parts[0]) == 4 { // year-first slipped through
		y, a, b = a, b, y
	}
	if y < 100 {
		y += 2000
	}

	day, month := a, b
	if !dayFirst {
		day, month = b, a
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || y < 1900 || y > 2200 {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}

	t := time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid calendar date: %s", s)
	}
	return t, nil
}

func numericDateParts(s string) (int, int) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) < 2 {
		return 0, 0
	}
	return leadingInt(parts[0]), leadingInt(parts[1])
}

func leadingInt(s string) int {
	n := 0
	for _, c := range strings.TrimSpace(s) {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CleanDescription trims and collapses internal whitespace.
func CleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeCurrency accepts a 3-letter ISO code or a well-known symbol.
func normalizeCurrency(raw string) (string, bool) {
	s := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), "\"'"))
	if s == "" {
		return "", false
	}
	if len(s) == 3 {
		valid := true
		for _, r := range s {
			if r < 'A' || r > 'Z' {
				valid = false
				break
			}
		}
		if valid {
			return s, true
		}
	}
	switch s {
	case "€":
		return "EUR", true
	case "£":
		return "GBP", true
	case "$":
		return "USD", true
	case "R$":
		return "BRL", true
	}
	return "", false
}

func coalesceRaw(rec parser.RawRecord) string {
	if rec.Amount != "" {
		return rec.Amount
	}
	if rec.Debit != "" {
		return rec.Debit
	}
	return rec.Credit
}
