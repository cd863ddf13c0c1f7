package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gocarina/gocsv"
)

// statementRow supports struct-based unmarshaling of well-known header
// names (gocsv matches by header). Multiple tags cover the bank exports we
// have seen in the wild.
type statementRow struct {
	Date      string `csv:"date"`
	DataMov   string `csv:"data mov."`
	Fecha     string `csv:"fecha"`
	Datum     string `csv:"datum"`

	Description string `csv:"description"`
	Descricao   string `csv:"descrição"`
	Descricao2  string `csv:"descricao"`
	Merchant    string `csv:"merchant"`
	Payee       string `csv:"payee"`
	Memo        string `csv:"memo"`

	Amount  string `csv:"amount"`
	Valor   string `csv:"valor"`
	Importe string `csv:"importe"`
	Value   string `csv:"value"`

	Debit   string `csv:"debit"`
	Debito  string `csv:"débito"`
	Debito2 string `csv:"debito"`

	Credit   string `csv:"credit"`
	Credito  string `csv:"crédito"`
	Credito2 string `csv:"credito"`

	Currency string `csv:"currency"`
	Moeda    string `csv:"moeda"`

	Category  string `csv:"category"`
	Categoria string `csv:"categoria"`
}

// Parser converts raw statement files into ordered RawRecords.
type Parser struct {
	logger *slog.Logger
}

// New creates a parser. A nil logger falls back to slog's default.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse dispatches on the declared file kind. Only a file that yields no
// records at all is a hard error; row-level problems are collected in
// Result.Errors and the run continues.
func (p *Parser) Parse(data []byte, kind FileKind) (*Result, error) {
	switch kind {
	case KindCSV:
		return p.parseDelimited(data)
	case KindXLSX:
		return p.parseExcel(data)
	case KindPDF:
		return p.parsePDF(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// parseDelimited handles CSV/TSV statements: sniff the layout, then read
// rows either via gocsv struct tags (recognized headers) or positionally.
func (p *Parser) parseDelimited(data []byte) (*Result, error) {
	data = normalizeBytes(data)
	shape, err := detectShape(data)
	if err != nil {
		return nil, err
	}

	roles := suggestRoles(shape.headers)
	if !shape.hasHeader {
		roles = positionalRoles(widestRow(shape.sampleRows))
	}

	result := &Result{Dialect: probeDialect(shape.sampleRows, roles)}

	if shape.hasHeader {
		if records, ok := p.parseWithTags(data, shape); ok {
			result.Records = records
			return result, nil
		}
	}

	if roles.date < 0 || roles.desc < 0 || (roles.amount < 0 && !roles.doubleEntry) {
		// Header keywords matched but didn't bind the essential columns;
		// positions stand a better chance than giving up.
		roles = positionalRoles(widestRow(shape.sampleRows))
		if roles.date < 0 {
			return nil, ErrNoHeadersFound
		}
	}

	records, errs := p.parseWithRoles(data, shape, roles)
	result.Records = records
	result.Errors = errs
	return result, nil
}

// parseWithTags is the fast path for exports whose headers match the
// statementRow tags exactly. Returns ok=false when the headers didn't
// bind, so the caller can fall through to positional parsing.
func (p *Parser) parseWithTags(data []byte, shape *fileShape) ([]RawRecord, bool) {
	body := dropLines(string(data), shape.skipLines)

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = shape.delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []statementRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, false
	}

	records := make([]RawRecord, 0, len(rows))
	for i, row := range rows {
		rec := RawRecord{
			Date:        coalesce(row.Date, row.DataMov, row.Fecha, row.Datum),
			Description: coalesce(row.Description, row.Descricao, row.Descricao2, row.Merchant, row.Payee, row.Memo),
			Amount:      coalesce(row.Amount, row.Valor, row.Importe, row.Value),
			Debit:       coalesce(row.Debit, row.Debito, row.Debito2),
			Credit:      coalesce(row.Credit, row.Credito, row.Credito2),
			Currency:    coalesce(row.Currency, row.Moeda),
			Category:    coalesce(row.Category, row.Categoria),
			Line:        shape.skipLines + 2 + i, // 1-indexed, after header
		}
		if rec.Date == "" && rec.Description == "" && rec.Amount == "" && rec.Debit == "" && rec.Credit == "" {
			continue // blank or footer row
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, false
	}
	// The tags must have bound the essentials, otherwise positional
	// parsing stands a better chance.
	for _, rec := range records {
		if rec.Date == "" || (rec.Amount == "" && rec.Debit == "" && rec.Credit == "") {
			return nil, false
		}
	}
	return records, true
}

// parseWithRoles reads rows by column index. Preamble and header lines are
// dropped as physical lines before the CSV reader sees them, since
// csv.Reader silently skips blanks and would desync the count.
func (p *Parser) parseWithRoles(data []byte, shape *fileShape, roles columnRoles) ([]RawRecord, []ParseError) {
	skip := shape.skipLines
	if shape.hasHeader {
		skip++
	}
	body := dropLines(string(data), skip)

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = shape.delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	get := func(record []string, idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var (
		records []RawRecord
		errs    []ParseError
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Quoted fields may span physical lines, so the reader is the
			// only reliable source of line numbers.
			line := 0
			var cerr *csv.ParseError
			if errors.As(err, &cerr) {
				line = skip + cerr.Line
			}
			errs = append(errs, ParseError{Line: line, Message: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)

		rec := RawRecord{
			Date:        get(record, roles.date),
			Description: get(record, roles.desc),
			Amount:      get(record, roles.amount),
			Debit:       get(record, roles.debit),
			Credit:      get(record, roles.credit),
			Currency:    get(record, roles.currency),
			Category:    get(record, roles.category),
			Line:        skip + line,
			Raw:         record,
		}
		if rec.Date == "" && rec.Description == "" && rec.Amount == "" && rec.Debit == "" && rec.Credit == "" {
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}

func dropLines(s string, n int) string {
	for ; n > 0; n-- {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			return ""
		}
		s = s[idx+1:]
	}
	return s
}

func widestRow(rows [][]string) int {
	widest := 0
	for _, row := range rows {
		if len(row) > widest {
			widest = len(row)
		}
	}
	return widest
}

// coalesce returns the first non-empty trimmed value.
func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
