package modelbundle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArtifact_Defaults(t *testing.T) {
	doc := `
labels: [a, b]
vectorizer:
  vocabulary: {hello: 0}
  idf: [1.5]
classifier:
  coefficients: [[0.3]]
  intercepts: [0.1]
`
	a, err := DecodeArtifact("model.yml", []byte(doc))
	require.NoError(t, err)

	assert.Empty(t, a.Version)
	assert.Equal(t, []int{1, 2}, a.Vectorizer.NgramRange)
	assert.Equal(t, DefaultTokenPattern, a.Vectorizer.TokenPattern)
	require.NotNil(t, a.Vectorizer.Lowercase)
	assert.True(t, *a.Vectorizer.Lowercase)
	assert.Equal(t, NormL2, a.Vectorizer.Norm)
	assert.Equal(t, MultiClassMultinomial, a.Classifier.MultiClass)

	err = a.Validate()
	require.Error(t, err, "the version tag has no default")
	assert.Contains(t, err.Error(), "version")
}

func TestDecodeArtifact_ExplicitLowercaseFalse(t *testing.T) {
	doc := `{"labels":["a","b"],"vectorizer":{"vocabulary":{"Hi":0},"idf":[1],"lowercase":false},"classifier":{"coefficients":[[1]],"intercepts":[0]}}`
	a, err := DecodeArtifact("model.json", []byte(doc))
	require.NoError(t, err)
	require.NotNil(t, a.Vectorizer.Lowercase)
	assert.False(t, *a.Vectorizer.Lowercase)
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"no version", func(a *Artifact) { a.Version = "" }},
		{"no labels", func(a *Artifact) { a.Labels = nil }},
		{"duplicate labels", func(a *Artifact) { a.Labels = []string{"x", "x", "y"} }},
		{"empty vocabulary", func(a *Artifact) { a.Vectorizer.Vocabulary = map[string]int{} }},
		{"idf size mismatch", func(a *Artifact) { a.Vectorizer.IDF = []float64{1, 1} }},
		{"idf not finite", func(a *Artifact) { a.Vectorizer.IDF[2] = math.NaN() }},
		{"index out of range", func(a *Artifact) { a.Vectorizer.Vocabulary["amazon"] = 6 }},
		{"index reused", func(a *Artifact) { a.Vectorizer.Vocabulary["amazon"] = 0 }},
		{"ngram range inverted", func(a *Artifact) { a.Vectorizer.NgramRange = []int{2, 1} }},
		{"ngram range zero", func(a *Artifact) { a.Vectorizer.NgramRange = []int{0, 1} }},
		{"ngram range short", func(a *Artifact) { a.Vectorizer.NgramRange = []int{1} }},
		{"bad token pattern", func(a *Artifact) { a.Vectorizer.TokenPattern = `([a-z` }},
		{"two capture groups", func(a *Artifact) { a.Vectorizer.TokenPattern = `(a)(b)` }},
		{"bad strip accents", func(a *Artifact) { a.Vectorizer.StripAccents = "latin" }},
		{"bad norm", func(a *Artifact) { a.Vectorizer.Norm = "max" }},
		{"bad multi class", func(a *Artifact) { a.Classifier.MultiClass = "auto" }},
		{"row count mismatch", func(a *Artifact) { a.Classifier.Coefficients = a.Classifier.Coefficients[:2] }},
		{"intercept count mismatch", func(a *Artifact) { a.Classifier.Intercepts = []float64{0} }},
		{"row width mismatch", func(a *Artifact) { a.Classifier.Coefficients[1] = []float64{1, 2} }},
		{"weight not finite", func(a *Artifact) { a.Classifier.Coefficients[0][0] = math.Inf(1) }},
		{"intercept not finite", func(a *Artifact) { a.Classifier.Intercepts[1] = math.Inf(-1) }},
		{"single label", func(a *Artifact) {
			a.Labels = []string{"only"}
			a.Classifier.Coefficients = a.Classifier.Coefficients[:1]
			a.Classifier.Intercepts = a.Classifier.Intercepts[:1]
		}},
	}

	require.NoError(t, testArtifact().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifact()
			a.applyDefaults()
			tt.mutate(a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestArtifact_ValidateBinarySingleRow(t *testing.T) {
	a := binaryArtifact(MultiClassMultinomial)
	a.applyDefaults()
	assert.NoError(t, a.Validate())
}
