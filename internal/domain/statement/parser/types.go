// Package parser converts raw statement files (delimited text, XLSX, or
// text-extractable PDF) into ordered raw transaction records. Records keep
// their source order and position so later stages can reference them and so
// re-parsing the same bytes yields the same sequence.
package parser

import (
	"errors"
	"fmt"
)

// FileKind is the caller-declared type of an uploaded statement.
type FileKind string

const (
	KindCSV  FileKind = "csv"
	KindXLSX FileKind = "xlsx"
	KindPDF  FileKind = "pdf"
)

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find data headers")
	ErrUnknownKind    = errors.New("unknown file kind")
)

// RawRecord is one row/block extracted from a source file before
// interpretation. Field values are raw text exactly as they appeared.
type RawRecord struct {
	Date        string
	Description string
	Amount      string // single signed amount column, empty for double-entry
	Debit       string // double-entry money out
	Credit      string // double-entry money in
	Currency    string // per-row currency code/symbol, usually empty
	Category    string

	Line int // 1-indexed source line (sheet row for XLSX, text line for PDF)
	Page int // 1-indexed PDF page, 0 otherwise

	Raw []string // the original field values, for diagnostics
}

// ParseError is a non-fatal, row-level parsing failure. The run continues
// past it; callers surface the collected errors alongside the records.
type ParseError struct {
	Line    int
	Page    int
	Column  string
	Message string
	Raw     string
}

func (e ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("page %d, line %d: %s", e.Page, e.Line, e.Message)
	}
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %s: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Dialect carries regional formatting hints probed from sample data. The
// normalizer uses them when the import config doesn't pin a format.
type Dialect struct {
	European      bool // decimal comma, dot thousands
	EuropeanKnown bool
	DayFirst      bool // dates read day-first (DD/MM)
	DayFirstKnown bool
	CurrencyHint  string // ISO code when symbols/headers revealed one
}

// Result is the outcome of parsing one file.
type Result struct {
	Records []RawRecord
	Errors  []ParseError
	Dialect Dialect

	// RequiresImageFallback is set when a PDF carries no extractable text
	// layer (scanned image). No records are fabricated; the caller routes
	// the file to an image-based extraction path instead.
	RequiresImageFallback bool
}
