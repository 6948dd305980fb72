package modelbundle

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/mlerror"
	"fjacquet/txn-classifier/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := New(testArtifact())
	require.NoError(t, err)
	return b
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func TestBundle_Predict(t *testing.T) {
	b := newTestBundle(t)

	tests := []struct {
		text  string
		label string
	}{
		{"walmart store", "groceries"},
		{"shell gas", "transport"},
		{"amazon", "retail"},
		{"AMAZON", "retail"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			label, err := b.LabelFor(b.Predict(tt.text))
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestBundle_PredictProba(t *testing.T) {
	b := newTestBundle(t)

	probs := b.PredictProba("walmart store")
	require.Len(t, probs, 3)
	assert.InDelta(t, 1.0, sum(probs), 1e-9)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}

	// x = (1,1,1)/sqrt(3) over walmart, store, "walmart store"
	x := 1 / math.Sqrt(3)
	z := []float64{4 * x, 0, 0.5 * x}
	denom := math.Exp(z[0]) + math.Exp(z[1]) + math.Exp(z[2])
	assert.InDelta(t, math.Exp(z[0])/denom, probs[0], 1e-9)
	assert.Equal(t, 0, argmax(probs))
}

func TestBundle_EmptyFeatureVector(t *testing.T) {
	b := newTestBundle(t)

	for _, text := range []string{"", "completely unknown words"} {
		probs := b.PredictProba(text)
		require.Len(t, probs, 3)
		for _, p := range probs {
			assert.InDelta(t, 1.0/3, p, 1e-9)
		}
		assert.Equal(t, 0, b.Predict(text))
	}
}

func TestBundle_BatchMatchesSingle(t *testing.T) {
	b := newTestBundle(t)
	texts := []string{"walmart", "shell gas", "", "amazon store"}

	idx := b.PredictBatch(texts)
	probs := b.PredictProbaBatch(texts)
	require.Len(t, idx, len(texts))
	require.Len(t, probs, len(texts))
	for i, text := range texts {
		assert.Equal(t, b.Predict(text), idx[i])
		assert.Equal(t, b.PredictProba(text), probs[i])
	}
}

func TestBundle_BinaryModels(t *testing.T) {
	multinomial, err := New(binaryArtifact(MultiClassMultinomial))
	require.NoError(t, err)
	probs := multinomial.PredictProba("yes")
	require.Len(t, probs, 2)
	assert.InDelta(t, 1/(1+math.Exp(-2)), probs[1], 1e-9)
	assert.InDelta(t, 1.0, sum(probs), 1e-9)

	ovr, err := New(binaryArtifact(MultiClassOVR))
	require.NoError(t, err)
	probs = ovr.PredictProba("yes")
	assert.InDelta(t, 1/(1+math.Exp(-1)), probs[1], 1e-9)
	assert.InDelta(t, 1.0, sum(probs), 1e-9)

	label, err := ovr.LabelFor(ovr.Predict("no match"))
	require.NoError(t, err)
	assert.Equal(t, "no", label)
}

func TestBundle_OVRMulticlass(t *testing.T) {
	a := testArtifact()
	a.Classifier.MultiClass = MultiClassOVR
	b, err := New(a)
	require.NoError(t, err)

	probs := b.PredictProba("shell gas")
	assert.InDelta(t, 1.0, sum(probs), 1e-9)
	assert.Equal(t, 1, argmax(probs))
}

func TestBundle_LabelFor(t *testing.T) {
	b := newTestBundle(t)

	label, err := b.LabelFor(2)
	assert.NoError(t, err)
	assert.Equal(t, "retail", label)

	_, err = b.LabelFor(3)
	assert.Error(t, err)
	_, err = b.LabelFor(-1)
	assert.Error(t, err)
}

func TestBundle_Metadata(t *testing.T) {
	b := newTestBundle(t)

	assert.Equal(t, "2024.01", b.Version())
	assert.Equal(t, 6, b.VocabularySize())
	assert.Empty(t, b.Source())

	labels := b.Labels()
	assert.Equal(t, []string{"groceries", "transport", "retail"}, labels)
	labels[0] = "mutated"
	assert.Equal(t, "groceries", b.Labels()[0], "Labels must return a copy")
}

func TestNew_RequiresVersion(t *testing.T) {
	for _, version := range []string{"", "   "} {
		a := testArtifact()
		a.Version = version
		_, err := New(a)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	}
}

func TestLoadFrom_MissingVersion(t *testing.T) {
	doc := `
labels: [a, b]
vectorizer:
  vocabulary: {hello: 0}
  idf: [1.5]
classifier:
  coefficients: [[0.3]]
  intercepts: [0.1]
`
	_, err := LoadFrom(&store.MockArtifactStore{Path: "model.yaml", Data: []byte(doc)})

	var loadErr *mlerror.ModelLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "invalid artifact", loadErr.Reason)
	assert.Equal(t, "model.yaml", loadErr.Path)
}

func TestBundle_ConcurrentPredict(t *testing.T) {
	b := newTestBundle(t)
	want := b.PredictProba("walmart store")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, b.PredictProba("walmart store"))
		}()
	}
	wg.Wait()
}

func TestNew_NilArtifact(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func writeArtifact(t *testing.T, name string, marshal func(any) ([]byte, error)) string {
	t.Helper()
	data, err := marshal(testArtifact())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestLoad_YAMLAndJSON(t *testing.T) {
	for _, tc := range []struct {
		name    string
		file    string
		marshal func(any) ([]byte, error)
	}{
		{"yaml", "model.yaml", yaml.Marshal},
		{"json", "model.json", json.Marshal},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := writeArtifact(t, tc.file, tc.marshal)

			b, err := Load(path, logging.NewMockLogger())
			require.NoError(t, err)
			assert.Equal(t, path, b.Source())
			assert.Equal(t, "2024.01", b.Version())
			assert.Equal(t, newTestBundle(t).PredictProba("walmart store"), b.PredictProba("walmart store"))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(path, logging.NewMockLogger())
	require.Error(t, err)

	var loadErr *mlerror.ModelLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
	assert.Equal(t, "artifact not found", loadErr.Reason)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFrom_Errors(t *testing.T) {
	invalid, err := yaml.Marshal(binaryArtifact("softmaxish"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		reader *store.MockArtifactStore
		reason string
	}{
		{
			name:   "read failure",
			reader: &store.MockArtifactStore{Path: "model.yaml", ReadError: errors.New("permission denied")},
			reason: "cannot read artifact",
		},
		{
			name:   "malformed yaml",
			reader: &store.MockArtifactStore{Path: "model.yaml", Data: []byte("labels: [")},
			reason: "malformed artifact",
		},
		{
			name:   "malformed json",
			reader: &store.MockArtifactStore{Path: "model.json", Data: []byte(`{"labels":`)},
			reason: "malformed artifact",
		},
		{
			name:   "empty document",
			reader: &store.MockArtifactStore{Path: "model.yaml", Data: []byte("")},
			reason: "invalid artifact",
		},
		{
			name:   "invalid multi_class",
			reader: &store.MockArtifactStore{Path: "model.yaml", Data: invalid},
			reason: "invalid artifact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.reader)
			var loadErr *mlerror.ModelLoadError
			require.True(t, errors.As(err, &loadErr), "got %v", err)
			assert.Equal(t, tt.reason, loadErr.Reason)
			assert.Equal(t, tt.reader.Path, loadErr.Path)
		})
	}
}
