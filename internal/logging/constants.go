package logging

// Standardized field names for structured logging.
const (
	FieldModelPath    = "model_path"
	FieldModelVersion = "model_version"
	FieldIndex        = "index"
	FieldCategory     = "category"
	FieldConfidence   = "confidence"
	FieldThreshold    = "threshold"
	FieldReason       = "reason"
	FieldScore        = "score"
	FieldOperation    = "operation"
	FieldStatus       = "status"
	FieldDuration     = "duration_ms"
	FieldCount        = "count"
	FieldRequestID    = "request_id"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldInputFile    = "input_file"
	FieldOutputFile   = "output_file"
)
