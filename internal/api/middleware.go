package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fjacquet/txn-classifier/internal/logging"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the request ID set by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// HandlerFunc is an endpoint that reports failures by returning them.
type HandlerFunc func(http.ResponseWriter, *http.Request, *logging.LogData) error

// LoggingWrapper adapts an endpoint to http.HandlerFunc. Returned errors are
// rendered as JSON error responses, and each request emits one entry carrying
// its fields and duration.
func LoggingWrapper(loggingName string, logger logging.Logger, handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		logData := logging.NewLogData(logger)
		logData.AddData(logging.FieldMethod, req.Method)
		logData.AddData(logging.FieldPath, req.URL.Path)
		if id := RequestIDFromContext(req.Context()); id != "" {
			logData.AddData(logging.FieldRequestID, id)
		}

		logger.Debug(fmt.Sprintf("Handler.%s.Start", loggingName))

		endTimer := logData.AddTiming(logging.FieldDuration)
		err := handler(w, req, logData)
		endTimer()

		if err != nil {
			status := writeError(w, err)
			logData.AddData(logging.FieldStatus, status)
			entry := logData.Log().WithError(err)
			if status >= http.StatusInternalServerError {
				entry.Error(fmt.Sprintf("Handler.%s.Error", loggingName))
			} else {
				entry.Warn(fmt.Sprintf("Handler.%s.Rejected", loggingName))
			}
			return
		}

		logData.Log().Info(fmt.Sprintf("Handler.%s.Complete", loggingName))
	}
}

// RequestID propagates the caller's X-Request-ID or assigns a new UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// CORS allows the configured origins. "*" allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || allowAll {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Add("Vary", "Origin")
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
						h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
						h.Set("Access-Control-Max-Age", "600")
						w.WriteHeader(http.StatusNoContent)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a panic into a 500 response and an error log entry.
func Recover(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Recovered from panic",
						logging.Field{Key: logging.FieldPath, Value: r.URL.Path},
						logging.Field{Key: logging.FieldRequestID, Value: RequestIDFromContext(r.Context())},
						logging.Field{Key: "panic", Value: fmt.Sprint(rec)})
					if !wrapped.wroteHeader {
						writeError(wrapped, fmt.Errorf("panic: %v", rec))
					}
				}
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// AccessLog logs method, path, status and duration of every request.
func AccessLog(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			logger.Debug("HTTP request",
				logging.Field{Key: logging.FieldMethod, Value: r.Method},
				logging.Field{Key: logging.FieldPath, Value: r.URL.Path},
				logging.Field{Key: logging.FieldStatus, Value: wrapped.Status()},
				logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
				logging.Field{Key: logging.FieldRequestID, Value: RequestIDFromContext(r.Context())})
		})
	}
}

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
