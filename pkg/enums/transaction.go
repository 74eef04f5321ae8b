package enums

import "fmt"

// TransactionType separates money coming in from money going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeIncome,
	TransactionTypeExpense,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}

// TransactionStatus is kept for the ledger shape; every recorded line is paid.
type TransactionStatus string

const TransactionStatusPaid TransactionStatus = "paid"

// TransactionCategory is the closed set of ledger categories.
type TransactionCategory string

const (
	TransactionCategoryService     TransactionCategory = "service"
	TransactionCategoryProductSale TransactionCategory = "product_sale"
	TransactionCategorySalary      TransactionCategory = "salary"
	TransactionCategoryCommission  TransactionCategory = "commission"
	TransactionCategoryRent        TransactionCategory = "rent"
	TransactionCategoryUtilities   TransactionCategory = "utilities"
	TransactionCategorySupplies    TransactionCategory = "supplies"
	TransactionCategoryMarketing   TransactionCategory = "marketing"
	TransactionCategoryTaxes       TransactionCategory = "taxes"
	TransactionCategoryMaintenance TransactionCategory = "maintenance"
	TransactionCategoryOther       TransactionCategory = "other"
)

var validTransactionCategories = []TransactionCategory{
	TransactionCategoryService,
	TransactionCategoryProductSale,
	TransactionCategorySalary,
	TransactionCategoryCommission,
	TransactionCategoryRent,
	TransactionCategoryUtilities,
	TransactionCategorySupplies,
	TransactionCategoryMarketing,
	TransactionCategoryTaxes,
	TransactionCategoryMaintenance,
	TransactionCategoryOther,
}

// categoryLabels is the display mapping sent to the finance sink.
var categoryLabels = map[TransactionCategory]string{
	TransactionCategoryService:     "Services",
	TransactionCategoryProductSale: "Product sales",
	TransactionCategorySalary:      "Salaries",
	TransactionCategoryCommission:  "Commissions",
	TransactionCategoryRent:        "Rent",
	TransactionCategoryUtilities:   "Utilities",
	TransactionCategorySupplies:    "Supplies",
	TransactionCategoryMarketing:   "Marketing",
	TransactionCategoryTaxes:       "Taxes",
	TransactionCategoryMaintenance: "Maintenance",
	TransactionCategoryOther:       "Other",
}

// String implements fmt.Stringer.
func (c TransactionCategory) String() string {
	return string(c)
}

// Label returns the human readable category name.
func (c TransactionCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[TransactionCategoryOther]
}

// IsValid reports whether the value is a known TransactionCategory.
func (c TransactionCategory) IsValid() bool {
	for _, candidate := range validTransactionCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseTransactionCategory converts raw input into a TransactionCategory.
func ParseTransactionCategory(value string) (TransactionCategory, error) {
	for _, candidate := range validTransactionCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction category %q", value)
}
