package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParser_Parse_XLSX(t *testing.T) {
	t.Run("reads a transactions sheet", func(t *testing.T) {
		data := workbookBytes(t, "Transactions", [][]any{
			{"Date", "Description", "Amount"},
			{"2024-01-15", "PINGO DOCE", "-20.00"},
			{"2024-01-16", "GALP", "-45.50"},
		})

		result, err := New(nil).Parse(data, KindXLSX)

		require.NoError(t, err)
		require.Len(t, result.Records, 2)
		assert.Equal(t, "PINGO DOCE", result.Records[0].Description)
		assert.Equal(t, "-20.00", result.Records[0].Amount)
		assert.Equal(t, 2, result.Records[0].Line)
	})

	t.Run("skips title rows above the header", func(t *testing.T) {
		data := workbookBytes(t, "Extrato", [][]any{
			{"Extrato de Conta"},
			{},
			{"Data Mov.", "Descrição", "Débito", "Crédito"},
			{"15/01/2024", "CONTINENTE", "125,30", ""},
		})

		result, err := New(nil).Parse(data, KindXLSX)

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "125,30", result.Records[0].Debit)
	})

	t.Run("no header row found", func(t *testing.T) {
		data := workbookBytes(t, "Notes", [][]any{
			{"just", "some", "cells"},
		})

		_, err := New(nil).Parse(data, KindXLSX)
		assert.ErrorIs(t, err, ErrNoHeadersFound)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		_, err := New(nil).Parse([]byte("not a zip archive"), KindXLSX)
		assert.Error(t, err)
	})
}
