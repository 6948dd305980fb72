package models

// Transaction types accepted at the boundary.
const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// Canonical categories produced by the standardizer.
const (
	CategoryFood           = "Food"
	CategoryTransportation = "Transportation"
	CategoryEntertainment  = "Entertainment"
	CategoryShopping       = "Shopping"
	CategoryBills          = "Bills"
	CategoryIncome         = "Income"
	CategoryTravel         = "Travel"
	CategoryTransfer       = "Transfer"
	CategoryInsurance      = "Insurance"
	CategoryInvestment     = "Investment"
	CategoryOther          = "Other"
)

// CanonicalCategories lists every canonical category in display order.
var CanonicalCategories = []string{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryIncome,
	CategoryTravel,
	CategoryTransfer,
	CategoryInsurance,
	CategoryInvestment,
	CategoryOther,
}

// Boundary limits and defaults.
const (
	MaxDescriptionLength       = 500
	MaxBatchTransactions       = 1000
	MaxDescriptions            = 100
	MinAnomalyTransactions     = 5
	DefaultContamination       = 0.05
	DefaultConfidenceThreshold = 0.5
)

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
