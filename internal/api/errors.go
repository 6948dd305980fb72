package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fjacquet/txn-classifier/internal/mlerror"
)

const (
	detailModelNotLoaded    = "ML model not loaded. Please restart the service."
	detailPredictionFailed  = "Prediction failed"
	detailInternal          = "Internal server error"
	errorCodeInternal       = "INTERNAL_ERROR"
	maxRequestBodyBytes     = 10 << 20
	contentTypeJSON         = "application/json"
	headerRequestID         = "X-Request-ID"
	headerContentTypeOption = "X-Content-Type-Options"
)

// httpError is an error with an explicit status and client-facing detail.
type httpError struct {
	status int
	detail string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.detail)
}

// errorResponse maps an error onto a status code and body. Internal causes
// never reach the body.
func errorResponse(err error) (int, ErrorResponse) {
	var (
		httpErr    *httpError
		validation *mlerror.ValidationError
		invalid    *mlerror.InvalidInputError
		failed     *mlerror.PredictionFailedError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr.status, newErrorBody(httpErr.status, httpErr.detail)
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, newErrorBody(http.StatusUnprocessableEntity, validation.Error())
	case errors.As(err, &invalid):
		return http.StatusBadRequest, newErrorBody(http.StatusBadRequest, invalid.Error())
	case errors.Is(err, mlerror.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, newErrorBody(http.StatusServiceUnavailable, detailModelNotLoaded)
	case errors.As(err, &failed):
		return http.StatusInternalServerError, newErrorBody(http.StatusInternalServerError, detailPredictionFailed)
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: detailInternal, ErrorCode: errorCodeInternal}
	}
}

func newErrorBody(status int, detail string) ErrorResponse {
	return ErrorResponse{Detail: detail, ErrorCode: fmt.Sprintf("HTTP_%d", status)}
}

func writeError(w http.ResponseWriter, err error) int {
	status, body := errorResponse(err)
	writeJSON(w, status, body)
	return status
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set(headerContentTypeOption, "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON body into dst. Malformed bodies and type
// mismatches are reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &httpError{status: http.StatusRequestEntityTooLarge, detail: "request body too large"}
		}
		return &mlerror.ValidationError{Field: "body", Reason: err.Error()}
	}
	if dec.More() {
		return &mlerror.ValidationError{Field: "body", Reason: "unexpected data after JSON object"}
	}
	return nil
}
