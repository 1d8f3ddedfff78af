package service

import (
	"fmt"
	"os"
	"strings"

	"fin-extract/internal/models"
)

const documentSystemPrompt = `You are a financial document and image extraction specialist.
Extract ALL information from the provided file and reproduce it as markdown, keeping the layout and structure of the original.

Rules:
1. Copy every text, number and value exactly as shown. Do not summarise, paraphrase or skip anything visible, including headers and labels.
2. Use markdown headings, tables, lists and line breaks to mirror the visual structure. Keep related values grouped as in the original.
3. For multi-page documents mark each page with a line "=== PAGE X OF Y ===". When a table continues on the next page repeat its column headers.
4. For images identify the document type (driver licence, passport, invoice, receipt and so on) and extract every readable element.

Answer with a JSON object:
- result: the extracted markdown (empty on failure)
- description: a short description of the document (empty on failure)
- error: false on success, true on failure
- errorReason: why the extraction failed (empty on success)

Do not wrap the JSON in code fences. Escape quotes, backslashes and newlines inside the result string.`

const categoryPreamble = `You are analysing documents supplied for a home loan application. The user message contains the documents, each wrapped in <file> tags with a <meta> block (original filename and description) and a <body> block with the extracted markdown. Page boundaries appear as "=== PAGE X OF Y ===".

For every value you report, list the sources it was found in as {file_path, page_number}, using the filename from the <meta> block. Only report what the documents support; never invent values. Amounts are plain numbers without currency symbols or thousands separators.
`

var categoryInstructions = map[models.Category]string{
	models.CategoryBasicFact: `Extract the basic facts of every applicant: first name, last name, date of birth (YYYY-MM-DD), phone number, email, current address, employment status, annual income and marital status.
Each field is an object {value, source, blank}. When the documents do not contain a field, set value to null, source to an empty list and blank to true.
Marital status is one of: ` + strings.Join(models.MaritalStatuses, ", ") + `.`,

	models.CategoryAsset: `Extract every asset owned by the applicants: category, description, ownership (applicant names or percentage split), value and valuation basis (for example "Applicant Estimate", "Statement Balance", "Contract Price").
Category is one of: ` + strings.Join(models.AssetCategories, ", ") + `.`,

	models.CategoryLiability: `Extract every liability of the applicants: type, description, interest rate as written, ownership, lender, amount owing and limit.
Type is one of: ` + strings.Join(models.LiabilityTypes, ", ") + `. Use 0 for a limit the documents do not state.`,

	models.CategoryIncome: `Extract every income of the applicants: type, company (salary incomes only), ownership, frequency and amount.
Type is one of: ` + strings.Join(models.IncomeTypes, ", ") + `.
Frequency is one of: ` + strings.Join(models.Frequencies, ", ") + `. Keep the frequency the document states instead of converting amounts.`,

	models.CategoryExpense: `Extract the living expenses of the applicants: type, ownership, frequency, amount and a short reason describing the evidence (for example the recurring bank transaction).
Type is one of: ` + strings.Join(models.ExpenseTypes, ", ") + `.
Frequency is one of: ` + strings.Join(models.Frequencies, ", ") + `.`,
}

// categoryUserPrefix starts the user message of a category extraction.
const categoryUserPrefix = "This is the content I would like to be analysed: "

// CategorySystemPrompt returns the built-in system prompt for c.
func CategorySystemPrompt(c models.Category) (string, error) {
	instr, ok := categoryInstructions[c]
	if !ok {
		return "", fmt.Errorf("unknown category %q", c)
	}
	return categoryPreamble + "\n" + instr, nil
}

// LoadPrompt reads a prompt template from path. An empty path returns
// fallback.
func LoadPrompt(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %s: %w", path, err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return fallback, nil
	}
	return prompt, nil
}
