package modelbundle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorizerFor(t *testing.T, mutate func(*VectorizerSpec)) *Vectorizer {
	t.Helper()
	a := testArtifact()
	if mutate != nil {
		mutate(&a.Vectorizer)
	}
	a.applyDefaults()
	require.NoError(t, a.Vectorizer.validate())
	return newVectorizer(a.Vectorizer)
}

func l2(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v * v
	}
	return math.Sqrt(s)
}

func TestVectorizer_Analyze(t *testing.T) {
	tests := []struct {
		name     string
		ngrams   []int
		pattern  string
		text     string
		expected []string
	}{
		{"unigrams and bigrams", []int{1, 2}, "", "aa bb cc", []string{"aa", "bb", "cc", "aa bb", "bb cc"}},
		{"unigrams only", []int{1, 1}, "", "aa bb cc", []string{"aa", "bb", "cc"}},
		{"bigrams and trigrams", []int{2, 3}, "", "aa bb cc", []string{"aa bb", "bb cc", "aa bb cc"}},
		{"range wider than text", []int{1, 3}, "", "aa", []string{"aa"}},
		{"single letters dropped", []int{1, 1}, "", "a bb c 12 dd", []string{"bb", "dd"}},
		{"capture group", []int{1, 1}, `#(\w+)`, "#ab cd #ef", []string{"ab", "ef"}},
		{"empty text", []int{1, 2}, "", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vectorizerFor(t, func(s *VectorizerSpec) {
				s.NgramRange = tt.ngrams
				s.TokenPattern = tt.pattern
			})
			got := v.analyze(tt.text)
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestVectorizer_TransformIsL2Normalized(t *testing.T) {
	v := vectorizerFor(t, nil)

	vec := v.Transform("Walmart store walmart")
	require.Equal(t, []int{0, 1, 2}, vec.Indices)
	assert.InDelta(t, 1.0, l2(vec.Values), 1e-12)
	// walmart appears twice
	assert.InDelta(t, 2*vec.Values[1], vec.Values[0], 1e-12)
}

func TestVectorizer_UnknownTermsYieldEmptyVector(t *testing.T) {
	v := vectorizerFor(t, nil)

	vec := v.Transform("nothing here matches")
	assert.Equal(t, 0, vec.Len())
}

func TestVectorizer_SublinearTF(t *testing.T) {
	v := vectorizerFor(t, func(s *VectorizerSpec) {
		s.SublinearTF = true
		s.Norm = NormNone
		s.IDF = []float64{2, 1, 1, 1, 1, 1}
	})

	vec := v.Transform("walmart walmart walmart")
	require.Equal(t, []int{0}, vec.Indices)
	assert.InDelta(t, (1+math.Log(3))*2, vec.Values[0], 1e-12)
}

func TestVectorizer_L1Norm(t *testing.T) {
	v := vectorizerFor(t, func(s *VectorizerSpec) { s.Norm = NormL1 })

	vec := v.Transform("shell gas gas")
	var total float64
	for _, x := range vec.Values {
		total += x
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestVectorizer_StripAccents(t *testing.T) {
	withAccents := func(mode string) *Vectorizer {
		return vectorizerFor(t, func(s *VectorizerSpec) {
			s.Vocabulary = map[string]int{"cafe": 0, "creme": 1, "walmart store": 2, "shell": 3, "gas": 4, "amazon": 5}
			s.StripAccents = mode
		})
	}

	for _, mode := range []string{StripAccentsUnicode, StripAccentsASCII} {
		vec := withAccents(mode).Transform("Café Crème")
		assert.Equal(t, []int{0, 1}, vec.Indices, mode)
	}
}

func TestVectorizer_CaseSensitive(t *testing.T) {
	lower := false
	v := vectorizerFor(t, func(s *VectorizerSpec) { s.Lowercase = &lower })

	assert.Equal(t, 0, v.Transform("WALMART").Len())
	assert.Equal(t, 1, v.Transform("walmart").Len())
}
