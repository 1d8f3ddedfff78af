package service

import (
	"bytes"
	"testing"

	"fin-extract/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCategoryXLSX(t *testing.T) {
	result := &models.LiabilityResult{Liabilities: []models.Liability{{
		Type:        "Credit Card",
		Description: "Platinum card",
		Lender:      "Big Bank",
		AmountOwing: 1250.5,
		Limit:       10000,
		Source:      []models.Source{{FilePath: "statement.pdf", PageNumber: 3}},
	}}}

	data, err := ExportCategoryXLSX(models.CategoryLiability, result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Liabilities")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Type", rows[0][0])
	assert.Equal(t, "Credit Card", rows[1][0])
	assert.Equal(t, "Big Bank", rows[1][4])
	assert.Equal(t, "statement.pdf p.3", rows[1][7])
}

func TestExportCategoryXLSX_BasicFactBlank(t *testing.T) {
	result := &models.BasicFactResult{Applicants: []models.Applicant{{
		FirstName: models.Field{Value: "Li"},
		LastName:  models.Field{Value: "Wang"},
		Email:     models.Field{Blank: true},
	}}}
	data, err := ExportCategoryXLSX(models.CategoryBasicFact, result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Applicants", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Li", v)
	v, err = f.GetCellValue("Applicants", "E2")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestExportCategoryXLSX_WrongType(t *testing.T) {
	_, err := ExportCategoryXLSX(models.CategoryAsset, struct{}{})
	assert.Error(t, err)
}
