package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fin-extract/internal/models"

	"github.com/xuri/excelize/v2"
)

type sheetData struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// ExportCategoryXLSX renders a category result as a one-sheet workbook.
func ExportCategoryXLSX(c models.Category, result any) ([]byte, error) {
	data, err := categorySheet(c, result)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := data.name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range data.headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range data.rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	for i, w := range data.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveCategoryXLSX writes the workbook for result to <dir>/<c>.xlsx.
func SaveCategoryXLSX(dir string, c models.Category, result any) (string, error) {
	data, err := ExportCategoryXLSX(c, result)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, string(c)+".xlsx")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func categorySheet(c models.Category, result any) (sheetData, error) {
	switch r := result.(type) {
	case *models.BasicFactResult:
		d := sheetData{
			name: "Applicants",
			headers: []string{"First Name", "Last Name", "Date of Birth", "Phone", "Email",
				"Current Address", "Employment Status", "Annual Income", "Marital Status"},
			widths: []float64{16, 16, 14, 16, 28, 40, 20, 16, 14},
		}
		for _, a := range r.Applicants {
			d.rows = append(d.rows, []any{
				fieldValue(a.FirstName), fieldValue(a.LastName), fieldValue(a.DateOfBirth),
				fieldValue(a.PhoneNumber), fieldValue(a.Email), fieldValue(a.CurrentAddress),
				fieldValue(a.EmploymentStatus), fieldValue(a.AnnualIncome), fieldValue(a.MaritalStatus),
			})
		}
		return d, nil
	case *models.AssetResult:
		d := sheetData{
			name:    "Assets",
			headers: []string{"Category", "Description", "Ownership", "Value", "Valuation Basis", "Source"},
			widths:  []float64{24, 40, 24, 14, 20, 48},
		}
		for _, a := range r.Assets {
			d.rows = append(d.rows, []any{a.Category, a.Description, a.Ownership, a.Value, a.ValuationBasis, sourceText(a.Source)})
		}
		return d, nil
	case *models.LiabilityResult:
		d := sheetData{
			name:    "Liabilities",
			headers: []string{"Type", "Description", "Interest Rate", "Ownership", "Lender", "Amount Owing", "Limit", "Source"},
			widths:  []float64{16, 36, 14, 24, 24, 14, 14, 48},
		}
		for _, l := range r.Liabilities {
			d.rows = append(d.rows, []any{l.Type, l.Description, l.InterestRate, l.Ownership, l.Lender, l.AmountOwing, l.Limit, sourceText(l.Source)})
		}
		return d, nil
	case *models.IncomeResult:
		d := sheetData{
			name:    "Incomes",
			headers: []string{"Type", "Company", "Ownership", "Frequency", "Amount", "Source"},
			widths:  []float64{24, 32, 24, 12, 14, 48},
		}
		for _, i := range r.Incomes {
			d.rows = append(d.rows, []any{i.Type, i.Company, i.Ownership, i.Frequency, i.Amount, sourceText(i.Source)})
		}
		return d, nil
	case *models.ExpenseResult:
		d := sheetData{
			name:    "Expenses",
			headers: []string{"Type", "Ownership", "Frequency", "Amount", "Reason", "Source"},
			widths:  []float64{32, 24, 12, 14, 48, 48},
		}
		for _, e := range r.Expenses {
			d.rows = append(d.rows, []any{e.Type, e.Ownership, e.Frequency, e.Amount, e.Reason, sourceText(e.Source)})
		}
		return d, nil
	}
	return sheetData{}, fmt.Errorf("no spreadsheet layout for category %q (%T)", c, result)
}

func fieldValue(f models.Field) any {
	if f.Blank || f.Value == nil {
		return ""
	}
	return f.Value
}

func sourceText(sources []models.Source) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, fmt.Sprintf("%s p.%d", s.FilePath, s.PageNumber))
	}
	return strings.Join(parts, "; ")
}
