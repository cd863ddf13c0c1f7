package parser

import (
	"encoding/csv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Common bank statement header keywords (multi-language)
var headerKeywords = []string{
	// English
	"date", "description", "amount", "debit", "credit", "balance", "category", "merchant", "payee",
	// Portuguese
	"data mov", "descrição", "descricao", "débito", "debito", "crédito", "credito", "saldo", "categoria",
	// Spanish
	"fecha", "descripción", "descripcion", "importe", "cargo", "abono",
}

// fileShape holds the detected layout of a delimited file.
type fileShape struct {
	delimiter  rune
	skipLines  int // metadata lines before the header row
	headers    []string
	hasHeader  bool
	sampleRows [][]string
}

// columnRoles maps statement fields to column indices; -1 means absent.
type columnRoles struct {
	date        int
	desc        int
	amount      int
	debit       int
	credit      int
	currency    int
	category    int
	doubleEntry bool
}

// detectShape sniffs delimiter and header row from the first lines of a
// delimited file. When no header row is recognizable it falls back to a
// positional guess using the widest early line.
func detectShape(data []byte) (*fileShape, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")
	delimiter, skip, hasHeader := findHeaderRow(lines)
	if delimiter == 0 {
		return nil, ErrNoHeadersFound
	}

	shape := &fileShape{delimiter: delimiter, skipLines: skip, hasHeader: hasHeader}

	headerLine := cleanLine(lines[skip], skip == 0)
	r := csv.NewReader(strings.NewReader(headerLine))
	r.Comma = delimiter
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, ErrNoHeadersFound
	}
	for i, h := range fields {
		fields[i] = strings.TrimSpace(h)
	}
	if hasHeader {
		shape.headers = fields
	}

	shape.sampleRows = sampleRows(data, delimiter, skip, hasHeader, 5)
	return shape, nil
}

// findHeaderRow locates the header row and its delimiter within the first
// 20 lines. Returns hasHeader=false when only a positional fallback exists.
func findHeaderRow(lines []string) (rune, int, bool) {
	fallbackIdx, fallbackCount := -1, 0
	fallbackDelim := rune(0)
	keywordIdx, keywordCount, keywordScore := -1, 0, 0
	keywordDelim := rune(0)

	for i, line := range lines {
		if i > 20 {
			break
		}
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}

		delimiter, count := detectDelimiter(line)
		if count < 1 {
			continue
		}

		lower := strings.ToLower(line)
		matches := 0
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}

		if matches > 0 {
			// Real headers have many columns and several keyword hits;
			// metadata lines rarely have either.
			score := count*10 + matches
			if keywordIdx == -1 || score > keywordScore {
				keywordIdx, keywordCount, keywordScore = i, count, score
				keywordDelim = delimiter
			}
		} else if count > fallbackCount {
			fallbackIdx, fallbackCount = i, count
			fallbackDelim = delimiter
		}
	}

	if keywordIdx >= 0 && keywordCount >= 2 {
		return keywordDelim, keywordIdx, true
	}
	if fallbackCount >= 2 {
		return fallbackDelim, fallbackIdx, false
	}
	return 0, 0, false
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	best, bestCount := rune(0), 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if count := strings.Count(line, string(d)); count > bestCount {
			best, bestCount = d, count
		}
	}
	return best, bestCount
}

// suggestRoles matches columns to statement fields by header name. With no
// headers it guesses positionally: date, description, amount.
func suggestRoles(headers []string) columnRoles {
	roles := columnRoles{date: -1, desc: -1, amount: -1, debit: -1, credit: -1, currency: -1, category: -1}

	if len(headers) == 0 {
		return roles
	}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))

		if roles.date == -1 {
			if strings.Contains(h, "data mov") || strings.Contains(h, "date") ||
				strings.Contains(h, "fecha") || h == "data" || h == "datum" {
				roles.date = i
			}
		}
		if roles.desc == -1 {
			if strings.Contains(h, "descri") || strings.Contains(h, "merchant") ||
				strings.Contains(h, "payee") || strings.Contains(h, "memo") ||
				strings.Contains(h, "details") || h == "name" || h == "nome" {
				roles.desc = i
			}
		}
		if roles.debit == -1 {
			if strings.Contains(h, "débito") || strings.Contains(h, "debito") ||
				strings.Contains(h, "debit") || strings.Contains(h, "cargo") {
				roles.debit = i
			}
		}
		if roles.credit == -1 {
			if strings.Contains(h, "crédito") || strings.Contains(h, "credito") ||
				strings.Contains(h, "credit") || strings.Contains(h, "abono") {
				roles.credit = i
			}
		}
		if roles.amount == -1 {
			if h == "amount" || h == "valor" || h == "importe" || h == "value" ||
				h == "montant" || h == "montante" {
				roles.amount = i
			}
		}
		if roles.currency == -1 {
			if strings.Contains(h, "currency") || strings.Contains(h, "moeda") ||
				strings.Contains(h, "moneda") || strings.Contains(h, "divisa") ||
				strings.Contains(h, "valuta") {
				roles.currency = i
			}
		}
		if roles.category == -1 {
			if strings.Contains(h, "categ") || h == "type" || h == "tipo" {
				roles.category = i
			}
		}
	}

	roles.doubleEntry = roles.debit != -1 && roles.credit != -1
	return roles
}

// positionalRoles is the headerless fallback: date, description, amount in
// source order, widened only when the row is at least three fields.
func positionalRoles(width int) columnRoles {
	roles := columnRoles{date: -1, desc: -1, amount: -1, debit: -1, credit: -1, currency: -1, category: -1}
	if width >= 3 {
		roles.date, roles.desc, roles.amount = 0, 1, 2
	}
	return roles
}

// probeDialect inspects sample rows to infer regional formatting: decimal
// comma vs dot, day-first dates, and a currency hint from symbols.
func probeDialect(samples [][]string, roles columnRoles) Dialect {
	var d Dialect
	europeanHints, usHints := 0, 0
	dayFirst, monthFirst := false, false

	amountIdx := roles.amount
	if amountIdx < 0 {
		amountIdx = roles.debit
	}

	for _, row := range samples {
		if amountIdx >= 0 && amountIdx < len(row) {
			switch amountStyle(row[amountIdx]) {
			case 1:
				europeanHints++
			case -1:
				usHints++
			}
		}
		if roles.date >= 0 && roles.date < len(row) && row[roles.date] != "" {
			if firstDatePartOver12(row[roles.date]) {
				dayFirst = true
			} else if secondDatePartOver12(row[roles.date]) {
				monthFirst = true
			}
		}
		for _, cell := range row {
			switch {
			case strings.Contains(cell, "€") || strings.Contains(cell, "EUR"):
				d.CurrencyHint = "EUR"
				europeanHints++
			case strings.Contains(cell, "R$") || strings.Contains(cell, "BRL"):
				d.CurrencyHint = "BRL"
				europeanHints++ // Brazil uses the european number style
			case strings.Contains(cell, "£"):
				d.CurrencyHint = "GBP"
			case strings.Contains(cell, "$"):
				if d.CurrencyHint == "" {
					d.CurrencyHint = "USD"
				}
				usHints++
			}
		}
	}

	if europeanHints != usHints {
		d.European = europeanHints > usHints
		d.EuropeanKnown = true
	}
	if dayFirst != monthFirst {
		d.DayFirst = dayFirst
		d.DayFirstKnown = true
	}
	return d
}

// amountStyle returns 1 for european formatting, -1 for US, 0 for ambiguous.
func amountStyle(val string) int {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, val)
	cleaned = strings.TrimPrefix(cleaned, "-")
	if cleaned == "" {
		return 0
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			return 1
		}
		return -1
	case hasComma:
		if decimalSuffix(cleaned, ',') {
			return 1
		}
	case hasDot:
		if decimalSuffix(cleaned, '.') {
			return -1
		}
	}
	return 0
}

func decimalSuffix(value string, sep rune) bool {
	idx := strings.LastIndex(value, string(sep))
	if idx == -1 || idx == len(value)-1 {
		return false
	}
	digits := 0
	for _, r := range value[idx+1:] {
		if !unicode.IsDigit(r) {
			return false
		}
		digits++
		if digits > 2 {
			return false
		}
	}
	return digits > 0
}

func firstDatePartOver12(val string) bool {
	first, _ := splitDateParts(val)
	return first > 12 && first <= 31
}

func secondDatePartOver12(val string) bool {
	_, second := splitDateParts(val)
	return second > 12 && second <= 31
}

func splitDateParts(val string) (int, int) {
	parts := strings.FieldsFunc(val, func(r rune) bool {
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

func sampleRows(data []byte, delimiter rune, skip int, hasHeader bool, maxRows int) [][]string {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	start := skip
	if hasHeader {
		start++
	}

	var rows [][]string
	for lineNum := 0; ; lineNum++ {
		record, err := r.Read()
		if err != nil {
			break
		}
		if lineNum >= start {
			rows = append(rows, record)
			if len(rows) >= maxRows {
				break
			}
		}
	}
	return rows
}

// normalizeBytes strips a UTF-8 BOM and transcodes Latin-1 exports, which
// some banks still produce, into valid UTF-8.
func normalizeBytes(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return data
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
