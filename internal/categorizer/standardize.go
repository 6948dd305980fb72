// Package categorizer maps raw classifier labels onto the canonical category
// vocabulary consumed by downstream services.
package categorizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fjacquet/txn-classifier/internal/models"
)

// synonyms maps lowercase labels to their canonical category.
var synonyms = map[string]string{
	"food":       models.CategoryFood,
	"groceries":  models.CategoryFood,
	"restaurant": models.CategoryFood,
	"dining":     models.CategoryFood,

	"transportation": models.CategoryTransportation,
	"transport":      models.CategoryTransportation,
	"gas":            models.CategoryTransportation,
	"fuel":           models.CategoryTransportation,
	"uber":           models.CategoryTransportation,
	"lyft":           models.CategoryTransportation,

	"entertainment": models.CategoryEntertainment,
	"movie":         models.CategoryEntertainment,
	"streaming":     models.CategoryEntertainment,
	"gaming":        models.CategoryEntertainment,

	"shopping": models.CategoryShopping,
	"retail":   models.CategoryShopping,

	"bills":     models.CategoryBills,
	"utilities": models.CategoryBills,
	"utility":   models.CategoryBills,

	"income":   models.CategoryIncome,
	"salary":   models.CategoryIncome,
	"paycheck": models.CategoryIncome,

	"travel":  models.CategoryTravel,
	"hotel":   models.CategoryTravel,
	"flight":  models.CategoryTravel,
	"airline": models.CategoryTravel,

	"transfer": models.CategoryTransfer,
	"atm":      models.CategoryTransfer,

	"insurance": models.CategoryInsurance,

	"investment": models.CategoryInvestment,
	"stocks":     models.CategoryInvestment,
	"retirement": models.CategoryInvestment,
}

var canonical = func() map[string]struct{} {
	set := make(map[string]struct{}, len(models.CanonicalCategories))
	for _, c := range models.CanonicalCategories {
		set[c] = struct{}{}
	}
	return set
}()

// Standardize returns the canonical category for a raw label. Known synonyms
// map to their canonical name, anything else is returned capitalized, and a
// blank label becomes "Other". It never fails.
func Standardize(label string) string {
	cleaned := strings.TrimSpace(label)
	if cleaned == "" {
		return models.CategoryOther
	}

	if c, ok := synonyms[strings.ToLower(cleaned)]; ok {
		return c
	}

	return capitalize(cleaned)
}

// StandardizeAll applies Standardize to every label.
func StandardizeAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = Standardize(l)
	}
	return out
}

// IsCanonical reports whether name is one of the canonical categories.
func IsCanonical(name string) bool {
	_, ok := canonical[name]
	return ok
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
