package models

// PredictionResult is one classification outcome.
type PredictionResult struct {
	Category   string  `json:"category" csv:"category"`
	Confidence float64 `json:"confidence" csv:"confidence"`
	// LowConfidence is set when Confidence fell below the engine threshold.
	// The category is still the classifier's best guess.
	LowConfidence bool `json:"low_confidence" csv:"low_confidence"`
}
