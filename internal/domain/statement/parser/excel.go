package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var preferredSheetNames = []string{"transactions", "movimentos", "movimientos", "statement", "extrato"}

// parseExcel reads an XLSX workbook: pick the transaction sheet, locate the
// header row, then map rows with the same column roles as delimited text.
func (p *Parser) parseExcel(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := findTransactionSheet(f)
	if sheet == "" {
		return nil, ErrNoHeadersFound
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx, roles := findExcelHeader(rows)
	if headerIdx < 0 {
		return nil, ErrNoHeadersFound
	}

	var samples [][]string
	for i := headerIdx + 1; i < len(rows) && len(samples) < 5; i++ {
		samples = append(samples, rows[i])
	}

	result := &Result{Dialect: probeDialect(samples, roles)}

	get := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		rec := RawRecord{
			Date:        get(row, roles.date),
			Description: get(row, roles.desc),
			Amount:      get(row, roles.amount),
			Debit:       get(row, roles.debit),
			Credit:      get(row, roles.credit),
			Currency:    get(row, roles.currency),
			Category:    get(row, roles.category),
			Line:        i + 1, // 1-indexed sheet row
			Raw:         row,
		}
		if rec.Date == "" && rec.Description == "" && rec.Amount == "" && rec.Debit == "" && rec.Credit == "" {
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

// findTransactionSheet prefers a sheet named like "transactions", falling
// back to the first sheet.
func findTransactionSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, sheet := range sheets {
		lower := strings.ToLower(sheet)
		for _, name := range preferredSheetNames {
			if strings.Contains(lower, name) {
				return sheet
			}
		}
	}
	return sheets[0]
}

// findExcelHeader scans the first rows for one whose cells bind the
// required column roles.
func findExcelHeader(rows [][]string) (int, columnRoles) {
	limit := len(rows)
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		roles := suggestRoles(rows[i])
		if roles.date >= 0 && roles.desc >= 0 && (roles.amount >= 0 || roles.doubleEntry) {
			return i, roles
		}
	}
	return -1, columnRoles{}
}
