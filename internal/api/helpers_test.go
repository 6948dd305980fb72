package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fjacquet/txn-classifier/internal/anomaly"
	"fjacquet/txn-classifier/internal/inference"
	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/modelbundle"
	"fjacquet/txn-classifier/internal/models"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testBundle(t *testing.T) *modelbundle.Bundle {
	t.Helper()
	b, err := modelbundle.New(&modelbundle.Artifact{
		Version: "2024.03",
		Labels:  []string{"groceries", "transport", "shopping"},
		Vectorizer: modelbundle.VectorizerSpec{
			Vocabulary: map[string]int{"walmart": 0, "store": 1, "shell": 2, "gas": 3, "amazon": 4},
			IDF:        []float64{1, 1, 1, 1, 1},
			NgramRange: []int{1, 1},
		},
		Classifier: modelbundle.ClassifierSpec{
			Coefficients: [][]float64{
				{4, 2, 0, 0, 0},
				{0, 0, 4, 4, 0},
				{0, 0, 0, 0, 4},
			},
			Intercepts: []float64{0, 0, 0},
		},
	})
	require.NoError(t, err)
	return b
}

// newTestRouter wires a real engine and detector behind the full middleware stack.
func newTestRouter(t *testing.T, logger logging.Logger) http.Handler {
	t.Helper()
	engine := inference.NewEngine(testBundle(t), logger)
	h := NewHandler(engine, anomaly.NewDetector(logger), HandlerConfig{
		ServiceVersion: "1.0.0",
		ModelVersion:   "2024.03",
	})
	h.now = func() time.Time { return fixedNow }
	return NewRouter(h, []string{"http://localhost:5173"}, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", contentTypeJSON)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type stubPredictor struct {
	ready bool
	err   error
}

func (s *stubPredictor) Ready() bool { return s.ready }

func (s *stubPredictor) PredictBatch(_ context.Context, d []string) ([]models.PredictionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.PredictionResult, len(d))
	for i := range out {
		out[i] = models.PredictionResult{Category: models.CategoryOther, Confidence: 1}
	}
	return out, nil
}

func (s *stubPredictor) PredictForTransactions(ctx context.Context, r []models.TransactionRecord) ([]models.PredictionResult, error) {
	return s.PredictBatch(ctx, models.Descriptions(r))
}

type panicDetector struct{}

func (panicDetector) DetectAmountAnomalies([]models.AnomalyInput, float64) ([]models.AnomalyResult, error) {
	panic("boom")
}
