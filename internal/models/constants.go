package models

// Allowed category names.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryUtilities     = "Utilities"
	CategoryRent          = "Rent"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryIncome        = "Income"
	CategoryInvestment    = "Investment"
	CategoryHealth        = "Health"
	CategoryOther         = "Other"
)

// AllowedCategories is the closed set every categorization result must
// belong to, in prompt order.
var AllowedCategories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryUtilities,
	CategoryRent,
	CategoryEntertainment,
	CategoryShopping,
	CategoryIncome,
	CategoryInvestment,
	CategoryHealth,
	CategoryOther,
}

// IsAllowedCategory reports whether name is one of AllowedCategories.
// The comparison is exact.
func IsAllowedCategory(name string) bool {
	for _, c := range AllowedCategories {
		if c == name {
			return true
		}
	}
	return false
}

// DefaultCategories returns the categories seeded into an empty store.
func DefaultCategories() []Category {
	out := make([]Category, 0, len(AllowedCategories))
	for _, name := range AllowedCategories {
		typ := CategoryTypeExpense
		if name == CategoryIncome {
			typ = CategoryTypeIncome
		}
		out = append(out, Category{Name: name, Type: typ})
	}
	return out
}

// File permissions
const (
	PermissionDirectory    = 0750
	PermissionArchivedFile = 0640
	PermissionExportFile   = 0644
)
