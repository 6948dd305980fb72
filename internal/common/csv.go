// Package common provides CSV ingestion and export shared by the CLI commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/models"

	"github.com/gocarina/gocsv"
)

// PredictionRow is one line of a prediction export.
type PredictionRow struct {
	Description   string `csv:"description"`
	Category      string `csv:"category"`
	Confidence    string `csv:"confidence"`
	LowConfidence bool   `csv:"low_confidence"`
}

// AnomalyRow is one line of an anomaly export.
type AnomalyRow struct {
	Index       int     `csv:"index"`
	Date        string  `csv:"date"`
	Description string  `csv:"description"`
	Amount      string  `csv:"amount"`
	Category    string  `csv:"category"`
	Score       float64 `csv:"score"`
	Reason      string  `csv:"reason"`
}

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	logger.Info("Reading CSV file", logging.Field{Key: logging.FieldInputFile, Value: filePath})

	file, err := os.Open(filePath) // #nosec G304 -- user-supplied input file
	if err != nil {
		logger.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []TCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		logger.WithError(err).Error("Failed to parse CSV file")
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	logger.Debug("Successfully read CSV data", logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return rows, nil
}

// ReadTransactionsCSV reads a transaction file with the columns
// date, description, amount, type and category. Descriptions are trimmed;
// records are not validated.
func ReadTransactionsCSV(filePath string, logger logging.Logger) ([]models.TransactionRecord, error) {
	records, err := ReadCSVFile[models.TransactionRecord](filePath, logger)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}

// NewPredictionRows pairs descriptions with their results.
func NewPredictionRows(descriptions []string, results []models.PredictionResult) ([]PredictionRow, error) {
	if len(descriptions) != len(results) {
		return nil, fmt.Errorf("%d descriptions for %d predictions", len(descriptions), len(results))
	}
	rows := make([]PredictionRow, len(results))
	for i, r := range results {
		rows[i] = PredictionRow{
			Description:   descriptions[i],
			Category:      r.Category,
			Confidence:    fmt.Sprintf("%.4f", r.Confidence),
			LowConfidence: r.LowConfidence,
		}
	}
	return rows, nil
}

// NewAnomalyRows joins anomaly results with the records they point at.
func NewAnomalyRows(records []models.TransactionRecord, results []models.AnomalyResult) ([]AnomalyRow, error) {
	rows := make([]AnomalyRow, len(results))
	for i, r := range results {
		if r.Index < 0 || r.Index >= len(records) {
			return nil, fmt.Errorf("anomaly index %d out of range", r.Index)
		}
		rec := records[r.Index]
		rows[i] = AnomalyRow{
			Index:       r.Index,
			Date:        rec.Date,
			Description: rec.Description,
			Amount:      rec.Amount.StringFixed(2),
			Category:    rec.Category,
			Score:       r.Score,
			Reason:      r.Reason,
		}
	}
	return rows, nil
}

// WriteCSV marshals rows to w with a header line.
func WriteCSV[TCSVRow any](w io.Writer, rows []TCSVRow) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if err := gocsv.MarshalCSV(rows, writer); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteCSVFile writes rows to csvFile, creating parent directories as needed.
func WriteCSVFile[TCSVRow any](csvFile string, rows []TCSVRow, logger logging.Logger) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}

	if err := os.MkdirAll(filepath.Dir(csvFile), models.PermissionDirectory); err != nil {
		logger.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.OpenFile(csvFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G304 -- user-supplied output file
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteCSV(file, rows); err != nil {
		logger.WithError(err).Error("Failed to marshal rows to CSV")
		return err
	}

	logger.Info("Successfully wrote CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return nil
}

// NewAnomalyInputs converts records for the anomaly detector. A blank
// category is passed on as missing.
func NewAnomalyInputs(records []models.TransactionRecord) []models.AnomalyInput {
	inputs := make([]models.AnomalyInput, len(records))
	for i := range records {
		amount := records[i].Amount
		inputs[i] = models.AnomalyInput{
			Amount:      &amount,
			Date:        records[i].Date,
			Description: records[i].Description,
		}
		if category := strings.TrimSpace(records[i].Category); category != "" {
			inputs[i].Category = &category
		}
	}
	return inputs
}
