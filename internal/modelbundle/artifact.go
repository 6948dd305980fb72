package modelbundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vectorizer and classifier options understood by the runtime.
const (
	DefaultTokenPattern = `\b[a-zA-Z]{2,}\b`

	StripAccentsNone    = ""
	StripAccentsUnicode = "unicode"
	StripAccentsASCII   = "ascii"

	NormL2   = "l2"
	NormL1   = "l1"
	NormNone = "none"

	MultiClassMultinomial = "multinomial"
	MultiClassOVR         = "ovr"
)

// Artifact is the serialized form of a fitted pipeline: a TF-IDF vocabulary
// with its idf weights, the linear classifier parameters and the label
// vocabulary in classifier output order.
type Artifact struct {
	Version    string         `yaml:"version" json:"version"`
	Labels     []string       `yaml:"labels" json:"labels"`
	Vectorizer VectorizerSpec `yaml:"vectorizer" json:"vectorizer"`
	Classifier ClassifierSpec `yaml:"classifier" json:"classifier"`
}

// VectorizerSpec holds the fitted TF-IDF state.
type VectorizerSpec struct {
	Vocabulary   map[string]int `yaml:"vocabulary" json:"vocabulary"`
	IDF          []float64      `yaml:"idf" json:"idf"`
	NgramRange   []int          `yaml:"ngram_range" json:"ngram_range"`
	TokenPattern string         `yaml:"token_pattern" json:"token_pattern"`
	Lowercase    *bool          `yaml:"lowercase" json:"lowercase"`
	StripAccents string         `yaml:"strip_accents" json:"strip_accents"`
	SublinearTF  bool           `yaml:"sublinear_tf" json:"sublinear_tf"`
	Norm         string         `yaml:"norm" json:"norm"`
}

// ClassifierSpec holds the fitted logistic regression parameters.
// A binary model may carry a single coefficient row.
type ClassifierSpec struct {
	Coefficients [][]float64 `yaml:"coefficients" json:"coefficients"`
	Intercepts   []float64   `yaml:"intercepts" json:"intercepts"`
	MultiClass   string      `yaml:"multi_class" json:"multi_class"`
}

// DecodeArtifact decodes data according to the file extension of path.
// Files without a recognised extension are decoded as YAML, which also
// accepts JSON documents.
func DecodeArtifact(path string, data []byte) (*Artifact, error) {
	var a Artifact

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
			return nil, fmt.Errorf("decoding JSON artifact: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding YAML artifact: %w", err)
		}
	}

	a.applyDefaults()
	return &a, nil
}

func (a *Artifact) applyDefaults() {
	v := &a.Vectorizer
	if len(v.NgramRange) == 0 {
		v.NgramRange = []int{1, 2}
	}
	if v.TokenPattern == "" {
		v.TokenPattern = DefaultTokenPattern
	}
	if v.Lowercase == nil {
		lower := true
		v.Lowercase = &lower
	}
	if v.Norm == "" {
		v.Norm = NormL2
	}
	if a.Classifier.MultiClass == "" {
		a.Classifier.MultiClass = MultiClassMultinomial
	}
}

// Validate checks that the version tag is present and that the vectorizer,
// classifier and labels agree on shape.
func (a *Artifact) Validate() error {
	if strings.TrimSpace(a.Version) == "" {
		return fmt.Errorf("version tag is missing")
	}
	if len(a.Labels) == 0 {
		return fmt.Errorf("label vocabulary is empty")
	}
	seen := make(map[string]struct{}, len(a.Labels))
	for i, l := range a.Labels {
		if _, dup := seen[l]; dup {
			return fmt.Errorf("duplicate label %q at position %d", l, i)
		}
		seen[l] = struct{}{}
	}

	if err := a.Vectorizer.validate(); err != nil {
		return fmt.Errorf("vectorizer: %w", err)
	}
	if err := a.Classifier.validate(len(a.Labels), len(a.Vectorizer.IDF)); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	return nil
}

func (v *VectorizerSpec) validate() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("vocabulary is empty")
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("idf has %d weights for a vocabulary of %d terms", len(v.IDF), len(v.Vocabulary))
	}
	for i, w := range v.IDF {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("idf weight %d is not finite", i)
		}
	}

	used := make([]bool, len(v.IDF))
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("term %q has out of range index %d", term, idx)
		}
		if used[idx] {
			return fmt.Errorf("index %d is assigned to more than one term", idx)
		}
		used[idx] = true
	}

	if len(v.NgramRange) != 2 || v.NgramRange[0] < 1 || v.NgramRange[0] > v.NgramRange[1] {
		return fmt.Errorf("invalid ngram_range %v", v.NgramRange)
	}
	re, err := regexp.Compile(v.TokenPattern)
	if err != nil {
		return fmt.Errorf("invalid token_pattern: %w", err)
	}
	if re.NumSubexp() > 1 {
		return fmt.Errorf("token_pattern may have at most one capturing group")
	}

	switch v.StripAccents {
	case StripAccentsNone, StripAccentsUnicode, StripAccentsASCII:
	default:
		return fmt.Errorf("unsupported strip_accents %q", v.StripAccents)
	}
	switch v.Norm {
	case NormL2, NormL1, NormNone:
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}
	return nil
}

func (c *ClassifierSpec) validate(numLabels, numFeatures int) error {
	switch c.MultiClass {
	case MultiClassMultinomial, MultiClassOVR:
	default:
		return fmt.Errorf("unsupported multi_class %q", c.MultiClass)
	}

	rows := len(c.Coefficients)
	if numLabels == 1 {
		return fmt.Errorf("a classifier needs at least two labels")
	}
	if rows != numLabels && !(numLabels == 2 && rows == 1) {
		return fmt.Errorf("%d coefficient rows do not match %d labels", rows, numLabels)
	}
	if len(c.Intercepts) != rows {
		return fmt.Errorf("%d intercepts for %d coefficient rows", len(c.Intercepts), rows)
	}
	for i, row := range c.Coefficients {
		if len(row) != numFeatures {
			return fmt.Errorf("coefficient row %d has %d weights, vectorizer yields %d features", i, len(row), numFeatures)
		}
		for _, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("coefficient row %d contains a non-finite weight", i)
			}
		}
	}
	for i, b := range c.Intercepts {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("intercept %d is not finite", i)
		}
	}
	return nil
}
