package modelbundle

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SparseVector is a feature vector holding only non-zero entries, ordered by index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero features.
func (s SparseVector) Len() int { return len(s.Indices) }

// Vectorizer maps text onto the fitted TF-IDF feature space. It is read-only
// after construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	minN, maxN   int
	token        *regexp.Regexp
	lowercase    bool
	stripAccents string
	sublinear    bool
	norm         string
}

func newVectorizer(spec VectorizerSpec) *Vectorizer {
	return &Vectorizer{
		vocabulary:   spec.Vocabulary,
		idf:          spec.IDF,
		minN:         spec.NgramRange[0],
		maxN:         spec.NgramRange[1],
		token:        regexp.MustCompile(spec.TokenPattern),
		lowercase:    *spec.Lowercase,
		stripAccents: spec.StripAccents,
		sublinear:    spec.SublinearTF,
		norm:         spec.Norm,
	}
}

// Size returns the dimension of the feature space.
func (v *Vectorizer) Size() int { return len(v.idf) }

// Transform vectorizes a single document. Text with no known term yields an
// empty vector.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.analyze(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		if v.sublinear {
			tf = 1 + math.Log(tf)
		}
		vec.Values = append(vec.Values, tf*v.idf[idx])
	}

	v.normalize(vec.Values)
	return vec
}

// analyze returns the terms of text: preprocessed tokens expanded into word
// n-grams over the configured range.
func (v *Vectorizer) analyze(text string) []string {
	text = v.preprocess(text)

	var tokens []string
	if v.token.NumSubexp() == 1 {
		for _, m := range v.token.FindAllStringSubmatch(text, -1) {
			tokens = append(tokens, m[1])
		}
	} else {
		tokens = v.token.FindAllString(text, -1)
	}

	if v.maxN == 1 {
		return tokens
	}

	terms := make([]string, 0, len(tokens)*(v.maxN-v.minN+1))
	for n := v.minN; n <= v.maxN && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func (v *Vectorizer) preprocess(text string) string {
	switch v.stripAccents {
	case StripAccentsUnicode:
		text = stripAccents(text, runes.In(unicode.Mn))
	case StripAccentsASCII:
		text = stripAccents(text, runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII }))
	}
	if v.lowercase {
		text = strings.ToLower(text)
	}
	return text
}

// stripAccents decomposes text (NFKD) and removes the runes in drop.
func stripAccents(text string, drop runes.Set) string {
	t := transform.Chain(norm.NFKD, runes.Remove(drop))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func (v *Vectorizer) normalize(values []float64) {
	var total float64
	switch v.norm {
	case NormL2:
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case NormL1:
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
