// Package api exposes the inference engine and the anomaly detector over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/models"
)

// Predictor is the inference surface the handlers depend on.
type Predictor interface {
	Ready() bool
	PredictBatch(ctx context.Context, descriptions []string) ([]models.PredictionResult, error)
	PredictForTransactions(ctx context.Context, records []models.TransactionRecord) ([]models.PredictionResult, error)
}

// Detector is the anomaly surface the handlers depend on.
type Detector interface {
	DetectAmountAnomalies(inputs []models.AnomalyInput, contamination float64) ([]models.AnomalyResult, error)
}

// HandlerConfig carries what the handlers need besides their collaborators.
type HandlerConfig struct {
	ServiceVersion       string
	ModelVersion         string
	DefaultContamination float64
}

// Handler implements every endpoint.
type Handler struct {
	predictor Predictor
	detector  Detector
	cfg       HandlerConfig
	now       func() time.Time
}

// NewHandler creates the endpoint handlers.
func NewHandler(predictor Predictor, detector Detector, cfg HandlerConfig) *Handler {
	if cfg.DefaultContamination == 0 {
		cfg.DefaultContamination = models.DefaultContamination
	}
	return &Handler{
		predictor: predictor,
		detector:  detector,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Root describes the service.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request, _ *logging.LogData) error {
	writeJSON(w, http.StatusOK, ServiceInfo{
		Service: "Transaction Classification ML Service",
		Version: h.cfg.ServiceVersion,
		Status:  "running",
		Endpoints: map[string]string{
			"health":           "GET /health",
			"predict":          "POST /predict",
			"predict_batch":    "POST /predict-batch",
			"detect_anomalies": "POST /detect-anomalies",
		},
	})
	return nil
}

// Health reports liveness and whether a model is loaded.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request, logData *logging.LogData) error {
	loaded := h.predictor != nil && h.predictor.Ready()
	logData.AddData("model_loaded", loaded)

	resp := HealthResponse{
		Status:      "healthy",
		ModelLoaded: loaded,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		Version:     h.cfg.ServiceVersion,
	}
	if loaded {
		resp.ModelVersion = h.cfg.ModelVersion
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

// Predict classifies bare descriptions.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	var req PredictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	logData.AddData(logging.FieldCount, len(req.Descriptions))

	endTimer := logData.AddTiming("inference_ms")
	results, err := h.predictor.PredictBatch(r.Context(), req.Descriptions)
	endTimer()
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, PredictionResponse{Predictions: results})
	return nil
}

// PredictBatch classifies full transaction records.
func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	var req PredictBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	logData.AddData(logging.FieldCount, len(req.Transactions))

	endTimer := logData.AddTiming("inference_ms")
	results, err := h.predictor.PredictForTransactions(r.Context(), req.Transactions)
	endTimer()
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, PredictionResponse{Predictions: results})
	return nil
}

// DetectAnomalies flags unusual amounts per category.
func (h *Handler) DetectAnomalies(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	var req AnomalyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	contamination := h.cfg.DefaultContamination
	if req.Contamination != nil {
		contamination = *req.Contamination
	}
	logData.AddData(logging.FieldCount, len(req.Transactions))

	results, err := h.detector.DetectAmountAnomalies(req.Transactions, contamination)
	if err != nil {
		return err
	}
	logData.AddData("anomalies", len(results))

	writeJSON(w, http.StatusOK, AnomalyResponse{Anomalies: results})
	return nil
}
