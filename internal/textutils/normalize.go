// Package textutils turns raw bank-transaction descriptions into the cleaned
// text the classifier was trained on.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlPattern      = regexp.MustCompile(`http\S+|www\S+`)
	emailPattern    = regexp.MustCompile(`\S+@\S+`)
	datePattern     = regexp.MustCompile(`\d+[/-]\d+[/-]\d+`)
	numericIDMarker = regexp.MustCompile(`#\d+`)
)

// noiseWords are banking terms that carry no category signal.
var noiseWords = map[string]struct{}{
	"purchase":     {},
	"payment":      {},
	"transaction":  {},
	"debit":        {},
	"credit":       {},
	"pos":          {},
	"card":         {},
	"online":       {},
	"mobile":       {},
	"recurring":    {},
	"automatic":    {},
	"withdrawal":   {},
	"deposit":      {},
	"transfer":     {},
	"bill":         {},
	"subscription": {},
}

// IsNoiseWord reports whether token is dropped by Normalize.
func IsNoiseWord(token string) bool {
	_, ok := noiseWords[token]
	return ok
}

// Normalize cleans a raw description:
//
//  1. lowercase
//  2. strip URLs and email addresses
//  3. strip dates (NN/NN/NNNN, NN-NN-NNNN) and numeric-ID markers (#1234)
//  4. replace every remaining digit and ASCII punctuation character with a space
//  5. drop noise words
//  6. join surviving tokens with single spaces
//
// The result may be empty.
func Normalize(text string) string {
	text = strings.ToLower(text)

	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")

	text = datePattern.ReplaceAllString(text, "")
	text = numericIDMarker.ReplaceAllString(text, "")

	text = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || isASCIIPunct(r) {
			return ' '
		}
		return r
	}, text)

	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if IsNoiseWord(tok) {
			continue
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}

// NormalizeBatch normalizes every description, preserving order and length.
func NormalizeBatch(descriptions []string) []string {
	out := make([]string, len(descriptions))
	for i, d := range descriptions {
		out[i] = Normalize(d)
	}
	return out
}

// isASCIIPunct matches the 32 characters of !"#$%&'()*+,-./:;<=>?@[\]^_`{|}~
func isASCIIPunct(r rune) bool {
	return r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r))
}
