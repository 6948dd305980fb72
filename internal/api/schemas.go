package api

import (
	"fmt"
	"strings"

	"fjacquet/txn-classifier/internal/mlerror"
	"fjacquet/txn-classifier/internal/models"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Descriptions []string `json:"descriptions"`
}

// Validate trims every description and drops blank ones. At least one
// non-blank description is required, and at most models.MaxDescriptions
// may be sent.
func (r *PredictRequest) Validate() error {
	if len(r.Descriptions) == 0 {
		return &mlerror.ValidationError{Field: "descriptions", Reason: "at least 1 item is required"}
	}
	if len(r.Descriptions) > models.MaxDescriptions {
		return &mlerror.ValidationError{
			Field:  "descriptions",
			Reason: fmt.Sprintf("at most %d items are allowed, got %d", models.MaxDescriptions, len(r.Descriptions)),
		}
	}

	cleaned := make([]string, 0, len(r.Descriptions))
	for _, d := range r.Descriptions {
		if d = strings.TrimSpace(d); d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		return &mlerror.ValidationError{Field: "descriptions", Reason: "at least one non-empty description is required"}
	}
	r.Descriptions = cleaned
	return nil
}

// PredictBatchRequest is the body of POST /predict-batch.
type PredictBatchRequest struct {
	Transactions []models.TransactionRecord `json:"transactions"`
}

// Validate checks the batch size and every record.
func (r *PredictBatchRequest) Validate() error {
	if len(r.Transactions) == 0 {
		return &mlerror.ValidationError{Field: "transactions", Reason: "at least 1 item is required"}
	}
	if len(r.Transactions) > models.MaxBatchTransactions {
		return &mlerror.ValidationError{
			Field:  "transactions",
			Reason: fmt.Sprintf("at most %d items are allowed, got %d", models.MaxBatchTransactions, len(r.Transactions)),
		}
	}
	for i := range r.Transactions {
		r.Transactions[i].Normalize()
		if err := r.Transactions[i].Validate(); err != nil {
			return &mlerror.ValidationError{Field: fmt.Sprintf("transactions[%d]", i), Reason: err.Error()}
		}
	}
	return nil
}

// AnomalyRequest is the body of POST /detect-anomalies. Missing amount or
// category fields are left for the detector to reject.
type AnomalyRequest struct {
	Transactions  []models.AnomalyInput `json:"transactions"`
	Contamination *float64              `json:"contamination,omitempty"`
}

// Validate enforces the minimum batch size.
func (r *AnomalyRequest) Validate() error {
	if len(r.Transactions) < models.MinAnomalyTransactions {
		return &mlerror.ValidationError{
			Field:  "transactions",
			Reason: fmt.Sprintf("at least %d items are required, got %d", models.MinAnomalyTransactions, len(r.Transactions)),
		}
	}
	return nil
}

// PredictionResponse is returned by both prediction endpoints.
type PredictionResponse struct {
	Predictions []models.PredictionResult `json:"predictions"`
}

// AnomalyResponse is returned by POST /detect-anomalies.
type AnomalyResponse struct {
	Anomalies []models.AnomalyResult `json:"anomalies"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version,omitempty"`
	Timestamp    string `json:"timestamp"`
	Version      string `json:"version"`
}

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
}
