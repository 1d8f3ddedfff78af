package models

import "fmt"

type Category string

const (
	CategoryBasicFact Category = "basic_fact"
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryIncome    Category = "income"
	CategoryExpense   Category = "expense"
)

// Categories lists every extraction category in the order they are usually run.
var Categories = []Category{
	CategoryBasicFact,
	CategoryAsset,
	CategoryLiability,
	CategoryIncome,
	CategoryExpense,
}

// ParseCategory accepts the category name plus the short alias "basic".
func ParseCategory(s string) (Category, error) {
	if s == "basic" {
		return CategoryBasicFact, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Source points at the document page a value was read from.
type Source struct {
	FilePath   string `json:"file_path"`
	PageNumber int    `json:"page_number"`
}

// Field is an extracted scalar with provenance. Blank is set when the
// documents did not contain the value.
type Field struct {
	Value  any      `json:"value"`
	Source []Source `json:"source"`
	Blank  bool     `json:"blank"`
}

var MaritalStatuses = []string{"married", "single", "divorced", "widowed", "separated", "unknown"}

type Applicant struct {
	FirstName        Field `json:"firstName"`
	LastName         Field `json:"lastName"`
	DateOfBirth      Field `json:"dateOfBirth"`
	PhoneNumber      Field `json:"phoneNumber"`
	Email            Field `json:"email"`
	CurrentAddress   Field `json:"currentAddress"`
	EmploymentStatus Field `json:"employmentStatus"`
	AnnualIncome     Field `json:"annualIncome"`
	MaritalStatus    Field `json:"maritalStatus"`
}

type BasicFactResult struct {
	Applicants []Applicant `json:"applicants"`
}

var AssetCategories = []string{
	"Real Estate",
	"Deposit Account",
	"Managed Fund",
	"Personal Equity In Any Private Business",
	"Shares",
	"Superannuation",
	"Boat",
	"Motorcycle",
	"Motor Vehicle",
	"Truck",
	"Marine",
	"Caravan/Horse Float",
	"Plant and Equipment",
	"Stock Machinery",
	"Tools of Trade",
	"Charge Over Cash",
	"Collections",
	"Debenture Charge",
	"Goodwill",
	"Guarantee",
	"Receivables",
	"Home Contents",
	"Life Insurance",
	"Other",
}

type Asset struct {
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Ownership      string   `json:"ownership"`
	Value          float64  `json:"value"`
	ValuationBasis string   `json:"valuationBasis"`
	Source         []Source `json:"source"`
}

type AssetResult struct {
	Assets []Asset `json:"assets"`
}

var LiabilityTypes = []string{"Mortgage Loan", "Credit Card", "Personal Loan"}

type Liability struct {
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	InterestRate string   `json:"interest_rate"`
	Ownership    string   `json:"ownership"`
	Lender       string   `json:"lender"`
	AmountOwing  float64  `json:"amount_owing"`
	Limit        float64  `json:"limit"`
	Source       []Source `json:"source"`
}

type LiabilityResult struct {
	Liabilities []Liability `json:"liabilities"`
}

var IncomeTypes = []string{
	"Base Salary",
	"Regular Overtime",
	"Bonus",
	"Commission",
	"Work Allowance",
	"Workers Compensation",
	"Government Benefits",
	"Private Pension",
	"Addback",
	"Annuities",
	"Company Profit Before Tax",
	"Dividends",
	"Foreign Sourced",
	"Interest Income",
	"Rental Income",
	"Other Income",
}

var Frequencies = []string{"Annually", "Monthly", "Fortnightly", "Weekly"}

type Income struct {
	Type      string   `json:"type"`
	Company   string   `json:"company"`
	Ownership string   `json:"ownership"`
	Frequency string   `json:"frequency"`
	Amount    float64  `json:"amount"`
	Source    []Source `json:"source"`
}

type IncomeResult struct {
	Incomes []Income `json:"incomes"`
}

var ExpenseTypes = []string{
	"Board",
	"Child Care",
	"Child Maintenance",
	"Clothing & Personal Care",
	"Electricity",
	"Entertainment",
	"Gas",
	"Groceries",
	"Health Care",
	"Higher Education and Vocational Training",
	"Holiday Home Costs",
	"Home & Contents Insurance",
	"Home Maintenance",
	"Investment Property Costs",
	"Medical and Life Insurance",
	"Other",
	"Other Insurances",
	"Owner Occupied Council & Water Rates",
	"Pet Care",
	"Private and Non-Government Education",
	"Public Primary and Secondary Education",
	"Rental Expenses",
	"Strata Fees and Land Tax",
	"Telephone and Internet",
	"Vehicle Insurance",
	"Vehicle Maintenance & Transport",
	"Water",
}

type Expense struct {
	Type      string   `json:"type"`
	Ownership string   `json:"ownership"`
	Frequency string   `json:"frequency"`
	Amount    float64  `json:"amount"`
	Source    []Source `json:"source"`
	Reason    string   `json:"reason"`
}

type ExpenseResult struct {
	Expenses []Expense `json:"expenses"`
}

// NewCategoryResult returns an empty typed result for a category.
func NewCategoryResult(c Category) (any, error) {
	switch c {
	case CategoryBasicFact:
		return &BasicFactResult{}, nil
	case CategoryAsset:
		return &AssetResult{}, nil
	case CategoryLiability:
		return &LiabilityResult{}, nil
	case CategoryIncome:
		return &IncomeResult{}, nil
	case CategoryExpense:
		return &ExpenseResult{}, nil
	}
	return nil, fmt.Errorf("unknown category %q", c)
}

// DocumentExtraction is the structured answer of the per-document markdown pass.
type DocumentExtraction struct {
	Result      string `json:"result"`
	Description string `json:"description"`
	Error       bool   `json:"error"`
	ErrorReason string `json:"errorReason"`
}

// DocumentMetadata is written next to every extracted markdown file.
type DocumentMetadata struct {
	AnalysisID      string  `json:"analysis_id"`
	Filename        string  `json:"filename"`
	Description     string  `json:"description"`
	Error           bool    `json:"error"`
	ErrorReason     string  `json:"errorReason"`
	DurationSeconds float64 `json:"duration_seconds"`
	PageCount       int     `json:"page_count,omitempty"`
}
