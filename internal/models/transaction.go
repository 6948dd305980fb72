// Package models provides the data structures shared by the inference engine,
// the anomaly detector and the boundary layers.
package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// TransactionType is DEBIT or CREDIT.
type TransactionType string

// IsValid reports whether t is a recognized transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// TransactionRecord is one bank line item.
type TransactionRecord struct {
	Description string          `json:"description" csv:"description"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	Date        string          `json:"date" csv:"date"`
	Type        TransactionType `json:"type" csv:"type"`
	Category    string          `json:"category,omitempty" csv:"category,omitempty"`
}

// Normalize trims the description in place.
func (t *TransactionRecord) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

// Validate checks the record against the boundary schema: non-empty trimmed
// description of at most MaxDescriptionLength characters, strictly positive
// amount and a recognized type.
func (t TransactionRecord) Validate() error {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than 0, got %s", t.Amount.String())
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("type must be %s or %s, got '%s'", TransactionTypeDebit, TransactionTypeCredit, t.Type)
	}
	return nil
}

// Descriptions projects the description of every record, preserving order.
func Descriptions(records []TransactionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Description
	}
	return out
}
