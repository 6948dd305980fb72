package api

import (
	"net/http"

	"fjacquet/txn-classifier/internal/logging"
)

// NewRouter registers every endpoint behind the middleware stack.
func NewRouter(h *Handler, allowedOrigins []string, logger logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", LoggingWrapper("Root", logger, h.Root))
	mux.HandleFunc("GET /health", LoggingWrapper("Health", logger, h.Health))
	mux.HandleFunc("POST /predict", LoggingWrapper("Predict", logger, h.Predict))
	mux.HandleFunc("POST /predict-batch", LoggingWrapper("PredictBatch", logger, h.PredictBatch))
	mux.HandleFunc("POST /detect-anomalies", LoggingWrapper("DetectAnomalies", logger, h.DetectAnomalies))

	return Chain(mux,
		RequestID,
		AccessLog(logger),
		Recover(logger),
		CORS(allowedOrigins),
	)
}
