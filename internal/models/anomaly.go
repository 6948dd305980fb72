package models

import "github.com/shopspring/decimal"

// AnomalyInput is one transaction submitted for amount anomaly scoring.
// Amount and Category are pointers so that a missing field can be told apart
// from a zero value.
type AnomalyInput struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Date        string           `json:"date,omitempty"`
	Description string           `json:"description,omitempty"`
}

// NewAnomalyInput builds a fully populated AnomalyInput.
func NewAnomalyInput(amount float64, category string) AnomalyInput {
	a := decimal.NewFromFloat(amount)
	c := category
	return AnomalyInput{Amount: &a, Category: &c}
}

// AmountMember is one (input index, amount) pair inside a CategoryGroup.
type AmountMember struct {
	Index  int
	Amount float64
}

// CategoryGroup holds the amounts of one category with their statistics.
// It only lives for the duration of a detection call.
type CategoryGroup struct {
	Category string
	Members  []AmountMember
	Mean     float64
	StdDev   float64
}

// AnomalyResult is one flagged outlier.
type AnomalyResult struct {
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
