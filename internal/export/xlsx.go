// Package export renders ledger reports as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"purchase-ledger/internal/app"
)

const trialBalanceSheet = "Trial Balance"

// amountFormat is the built-in "#,##0.00" number format.
const amountFormat = 4

// WriteTrialBalanceXLSX writes the trial balance as a single-sheet workbook.
func WriteTrialBalanceXLSX(w io.Writer, tb *app.TrialBalanceResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), trialBalanceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for col, width := range map[string]float64{"A": 16, "B": 16, "C": 16, "D": 16} {
		if err := f.SetColWidth(trialBalanceSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}

	sheet := trialBalanceSheet
	f.SetCellValue(sheet, "A1", "Trial Balance ("+tb.Currency+")")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	for i, h := range []string{"Account", "Debit", "Credit", "Balance"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A3", "D3", headerStyle)

	row := 4
	for _, a := range tb.Accounts {
		r := fmt.Sprint(row)
		f.SetCellValue(sheet, "A"+r, sanitizeCell(a.Code))
		f.SetCellValue(sheet, "B"+r, a.Debit.InexactFloat64())
		f.SetCellValue(sheet, "C"+r, a.Credit.InexactFloat64())
		f.SetCellValue(sheet, "D"+r, a.Balance.InexactFloat64())
		f.SetCellStyle(sheet, "B"+r, "D"+r, amountStyle)
		row++
	}

	r := fmt.Sprint(row)
	f.SetCellValue(sheet, "A"+r, "TOTAL")
	f.SetCellValue(sheet, "B"+r, tb.TotalDebit.InexactFloat64())
	f.SetCellValue(sheet, "C"+r, tb.TotalCredit.InexactFloat64())
	f.SetCellStyle(sheet, "A"+r, "D"+r, totalStyle)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sanitizeCell prefixes values a spreadsheet would evaluate as a formula.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
