package service

import (
	"fmt"
	"slices"
	"sort"

	"fin-extract/internal/models"
)

func sourceSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path":   map[string]any{"type": "string"},
				"page_number": map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []string{"file_path", "page_number"},
		},
	}
}

func enumSchema(values []string) map[string]any {
	return map[string]any{"type": "string", "enum": slices.Clone(values)}
}

func objectSchema(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func listSchema(key string, item map[string]any) map[string]any {
	return objectSchema(map[string]any{
		key: map[string]any{"type": "array", "items": item},
	})
}

func fieldSchema(value map[string]any) map[string]any {
	return objectSchema(map[string]any{
		"value":  value,
		"source": sourceSchema(),
		"blank":  map[string]any{"type": "boolean"},
	})
}

var (
	str    = map[string]any{"type": "string"}
	amount = map[string]any{"type": "number", "minimum": 0}
)

// DocumentSchema describes models.DocumentExtraction.
func DocumentSchema() map[string]any {
	return objectSchema(map[string]any{
		"result":      str,
		"description": str,
		"error":       map[string]any{"type": "boolean"},
		"errorReason": str,
	})
}

// CategorySchema describes the result type of a category.
func CategorySchema(c models.Category) (map[string]any, error) {
	switch c {
	case models.CategoryBasicFact:
		return listSchema("applicants", objectSchema(map[string]any{
			"firstName":        fieldSchema(str),
			"lastName":         fieldSchema(str),
			"dateOfBirth":      fieldSchema(str),
			"phoneNumber":      fieldSchema(str),
			"email":            fieldSchema(str),
			"currentAddress":   fieldSchema(str),
			"employmentStatus": fieldSchema(str),
			"annualIncome":     fieldSchema(map[string]any{"type": "number"}),
			"maritalStatus":    fieldSchema(enumSchema(models.MaritalStatuses)),
		})), nil
	case models.CategoryAsset:
		return listSchema("assets", objectSchema(map[string]any{
			"category":       enumSchema(models.AssetCategories),
			"description":    str,
			"ownership":      str,
			"value":          amount,
			"valuationBasis": str,
			"source":         sourceSchema(),
		})), nil
	case models.CategoryLiability:
		return listSchema("liabilities", objectSchema(map[string]any{
			"type":          enumSchema(models.LiabilityTypes),
			"description":   str,
			"interest_rate": str,
			"ownership":     str,
			"lender":        str,
			"amount_owing":  amount,
			"limit":         amount,
			"source":        sourceSchema(),
		})), nil
	case models.CategoryIncome:
		return listSchema("incomes", objectSchema(map[string]any{
			"type":      enumSchema(models.IncomeTypes),
			"company":   str,
			"ownership": str,
			"frequency": enumSchema(models.Frequencies),
			"amount":    amount,
			"source":    sourceSchema(),
		})), nil
	case models.CategoryExpense:
		return listSchema("expenses", objectSchema(map[string]any{
			"type":      enumSchema(models.ExpenseTypes),
			"ownership": str,
			"frequency": enumSchema(models.Frequencies),
			"amount":    amount,
			"source":    sourceSchema(),
			"reason":    str,
		})), nil
	}
	return nil, fmt.Errorf("unknown category %q", c)
}
