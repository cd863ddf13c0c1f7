package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// A page averaging fewer extracted characters than this is treated as a
// scanned image rather than a text-layer statement.
const minTextCharsPerPage = 64

// Tolerance in PDF points when grouping glyph runs into visual lines.
const lineYTolerance = 2.0

var (
	dateTokenRe   = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}$`)
	amountTokenRe = regexp.MustCompile(`^\(?[-+]?[\d.,]*\d[.,]\d{2}\)?$`)
)

// parsePDF extracts the text layout page by page and recognizes transaction
// rows as lines that start with a date token and end with an amount token.
// When the file carries no usable text layer it reports the image fallback
// sentinel instead of fabricating records.
func (p *Parser) parsePDF(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, ErrEmptyFile
	}

	pages := make([][]string, 0, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, pageLines(page))
	}

	return resultFromPages(pages), nil
}

// resultFromPages recognizes transaction rows in the extracted page lines
// and decides whether the text layer is dense enough to trust.
func resultFromPages(pages [][]string) *Result {
	result := &Result{}
	totalChars := 0
	var sampleRows [][]string

	for pageIdx, lines := range pages {
		for lineIdx, line := range lines {
			totalChars += len(line)
			rec, ok := recognizeTransactionLine(line)
			if !ok {
				continue
			}
			rec.Line = lineIdx + 1
			rec.Page = pageIdx + 1
			result.Records = append(result.Records, rec)
			if len(sampleRows) < 5 {
				sampleRows = append(sampleRows, []string{rec.Date, rec.Description, rec.Amount})
			}
		}
	}

	if totalChars < minTextCharsPerPage*len(pages) && len(result.Records) == 0 {
		// Scanned-image PDF: route to the external image extraction path.
		result.RequiresImageFallback = true
		return result
	}

	if len(result.Records) == 0 {
		result.Errors = append(result.Errors, ParseError{
			Page:    1,
			Message: "no transaction rows recognized in extracted text",
		})
		return result
	}

	result.Dialect = probeDialect(sampleRows, columnRoles{date: 0, desc: 1, amount: 2, debit: -1, credit: -1, currency: -1, category: -1})
	return result
}

// pageLines groups the page's positioned glyph runs into visual lines,
// top-to-bottom, left-to-right. PDF y grows upward, so higher y comes first.
func pageLines(page pdf.Page) []string {
	texts := page.Content().Text
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if diff := sorted[i].Y - sorted[j].Y; diff > lineYTolerance || diff < -lineYTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var (
		lines   []string
		current strings.Builder
		lastY   float64
		lastEnd float64
		started bool
	)
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for _, t := range sorted {
		if started && (lastY-t.Y) > lineYTolerance {
			flush()
			lastEnd = 0
		}
		// A visible horizontal gap separates columns.
		if lastEnd != 0 && t.X-lastEnd > 1.0 {
			current.WriteByte(' ')
		}
		current.WriteString(t.S)
		lastY = t.Y
		lastEnd = t.X + t.W
		started = true
	}
	flush()
	return lines
}

// recognizeTransactionLine accepts lines shaped like
// "15/01/2024  WHOLE FOODS MARKET  42.00" with an optional trailing balance
// column, which is dropped in favor of the amount immediately before it.
func recognizeTransactionLine(line string) (RawRecord, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return RawRecord{}, false
	}
	if !dateTokenRe.MatchString(tokens[0]) {
		return RawRecord{}, false
	}

	// Find the last run of trailing amount tokens; with two (amount then
	// balance) the first of the pair is the transaction amount.
	amountIdx := -1
	for i := len(tokens) - 1; i > 0; i-- {
		if !amountTokenRe.MatchString(tokens[i]) {
			break
		}
		amountIdx = i
	}
	if amountIdx <= 1 {
		return RawRecord{}, false
	}

	desc := strings.Join(tokens[1:amountIdx], " ")
	if strings.TrimSpace(desc) == "" {
		return RawRecord{}, false
	}

	return RawRecord{
		Date:        tokens[0],
		Description: desc,
		Amount:      tokens[amountIdx],
		Raw:         tokens,
	}, true
}
