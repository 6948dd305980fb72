// Package inference turns raw descriptions into standardized categories with
// confidence scores.
package inference

import (
	"context"
	"fmt"
	"math"
	"time"

	"fjacquet/txn-classifier/internal/categorizer"
	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/mlerror"
	"fjacquet/txn-classifier/internal/models"
	"fjacquet/txn-classifier/internal/textutils"
)

// Classifier is the part of a loaded model the engine depends on.
type Classifier interface {
	PredictProba(text string) []float64
	LabelFor(index int) (string, error)
}

// Engine runs the normalize, classify, standardize pipeline. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	model     Classifier
	threshold float64
	workers   int
	parallel  int
	processor *ConcurrentProcessor
	logger    logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfidenceThreshold sets the confidence below which results are flagged.
func WithConfidenceThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithConcurrency sets the worker count and the batch size that triggers
// parallel classification.
func WithConcurrency(workers, parallelThreshold int) Option {
	return func(e *Engine) {
		e.workers = workers
		e.parallel = parallelThreshold
	}
}

// NewEngine creates an engine over model. A nil model is accepted; every
// prediction then fails with mlerror.ErrServiceUnavailable.
func NewEngine(model Classifier, logger logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	e := &Engine{
		model:     model,
		threshold: models.DefaultConfidenceThreshold,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.processor = NewConcurrentProcessor(logger, e.workers, e.parallel)
	return e
}

// Ready reports whether a model is loaded.
func (e *Engine) Ready() bool {
	return e.model != nil
}

// Threshold returns the low-confidence threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// PredictBatch classifies every description, returning results in input order.
func (e *Engine) PredictBatch(ctx context.Context, descriptions []string) ([]models.PredictionResult, error) {
	if !e.Ready() {
		return nil, mlerror.ErrServiceUnavailable
	}
	if len(descriptions) == 0 {
		return []models.PredictionResult{}, nil
	}

	start := time.Now()
	cleaned := textutils.NormalizeBatch(descriptions)
	results := make([]models.PredictionResult, len(cleaned))

	err := e.processor.Process(ctx, len(cleaned), func(i int) error {
		r, err := e.classify(cleaned[i])
		if err != nil {
			e.logger.WithError(err).Error("Prediction failed",
				logging.Field{Key: logging.FieldIndex, Value: i})
			return err
		}
		results[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	lowConfidence := 0
	for i := range results {
		if results[i].Confidence < e.threshold {
			results[i].LowConfidence = true
			lowConfidence++
			e.logger.Warn("Low confidence prediction",
				logging.Field{Key: logging.FieldIndex, Value: i},
				logging.Field{Key: logging.FieldCategory, Value: results[i].Category},
				logging.Field{Key: logging.FieldConfidence, Value: results[i].Confidence},
				logging.Field{Key: logging.FieldThreshold, Value: e.threshold})
		}
	}

	e.logger.Debug("Batch classified",
		logging.Field{Key: logging.FieldCount, Value: len(results)},
		logging.Field{Key: "low_confidence", Value: lowConfidence},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return results, nil
}

// PredictForTransactions validates every record and classifies their descriptions.
func (e *Engine) PredictForTransactions(ctx context.Context, records []models.TransactionRecord) ([]models.PredictionResult, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, &mlerror.InvalidInputError{Index: i, Reason: err.Error()}
		}
	}
	return e.PredictBatch(ctx, models.Descriptions(records))
}

// classify runs one cleaned description through the model. Panics inside the
// model surface as PredictionFailedError.
func (e *Engine) classify(text string) (result models.PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &mlerror.PredictionFailedError{Stage: "classification", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	probs := e.model.PredictProba(text)
	if len(probs) == 0 {
		return result, &mlerror.PredictionFailedError{Stage: "classification", Err: fmt.Errorf("no class probabilities")}
	}

	best := 0
	for i, p := range probs {
		if math.IsNaN(p) {
			return result, &mlerror.PredictionFailedError{Stage: "classification", Err: fmt.Errorf("probability %d is NaN", i)}
		}
		if p > probs[best] {
			best = i
		}
	}

	label, err := e.model.LabelFor(best)
	if err != nil {
		return result, &mlerror.PredictionFailedError{Stage: "label mapping", Err: err}
	}

	return models.PredictionResult{
		Category:   categorizer.Standardize(label),
		Confidence: probs[best],
	}, nil
}
