// Package modelbundle loads a fitted TF-IDF + logistic regression pipeline and
// exposes it as an immutable, concurrency-safe classifier.
package modelbundle

import (
	"errors"
	"fmt"
	"os"

	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/mlerror"
	"fjacquet/txn-classifier/internal/store"
)

// Bundle is a loaded model: vectorizer, classifier, label vocabulary and
// version. It is never mutated after Load returns.
type Bundle struct {
	version    string
	source     string
	labels     []string
	vectorizer *Vectorizer
	classifier *LinearClassifier
}

// Load resolves and reads the artifact at path, then builds the bundle.
func Load(path string, logger logging.Logger) (*Bundle, error) {
	return LoadFrom(store.NewArtifactStore(path, logger))
}

// LoadFrom builds a bundle from the artifact handed out by r.
func LoadFrom(r store.ArtifactReader) (*Bundle, error) {
	path, data, err := r.ReadArtifact()
	if err != nil {
		reason := "cannot read artifact"
		if errors.Is(err, os.ErrNotExist) {
			reason = "artifact not found"
		}
		return nil, &mlerror.ModelLoadError{Path: path, Reason: reason, Err: err}
	}

	artifact, err := DecodeArtifact(path, data)
	if err != nil {
		return nil, &mlerror.ModelLoadError{Path: path, Reason: "malformed artifact", Err: err}
	}

	b, err := New(artifact)
	if err != nil {
		return nil, &mlerror.ModelLoadError{Path: path, Reason: "invalid artifact", Err: err}
	}
	b.source = path
	return b, nil
}

// New builds a bundle from a decoded artifact.
func New(a *Artifact) (*Bundle, error) {
	if a == nil {
		return nil, fmt.Errorf("artifact is nil")
	}
	a.applyDefaults()
	if err := a.Validate(); err != nil {
		return nil, err
	}

	labels := make([]string, len(a.Labels))
	copy(labels, a.Labels)

	return &Bundle{
		version:    a.Version,
		labels:     labels,
		vectorizer: newVectorizer(a.Vectorizer),
		classifier: newLinearClassifier(a.Classifier, len(labels)),
	}, nil
}

// Predict returns the index of the most probable label for text.
func (b *Bundle) Predict(text string) int {
	return b.classifier.Predict(b.vectorizer.Transform(text))
}

// PredictProba returns one probability per label, in label order.
func (b *Bundle) PredictProba(text string) []float64 {
	return b.classifier.Probabilities(b.vectorizer.Transform(text))
}

// PredictBatch applies Predict to every text.
func (b *Bundle) PredictBatch(texts []string) []int {
	out := make([]int, len(texts))
	for i, t := range texts {
		out[i] = b.Predict(t)
	}
	return out
}

// PredictProbaBatch applies PredictProba to every text.
func (b *Bundle) PredictProbaBatch(texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = b.PredictProba(t)
	}
	return out
}

// LabelFor maps a class index back to its raw label.
func (b *Bundle) LabelFor(index int) (string, error) {
	if index < 0 || index >= len(b.labels) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", index, len(b.labels))
	}
	return b.labels[index], nil
}

// Version returns the artifact version tag.
func (b *Bundle) Version() string { return b.version }

// Source returns where the artifact was read from, empty for bundles built with New.
func (b *Bundle) Source() string { return b.source }

// Labels returns a copy of the label vocabulary.
func (b *Bundle) Labels() []string {
	out := make([]string, len(b.labels))
	copy(out, b.labels)
	return out
}

// VocabularySize returns the number of TF-IDF features.
func (b *Bundle) VocabularySize() int { return b.vectorizer.Size() }
