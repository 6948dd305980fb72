// Package predict classifies descriptions from the command line or a CSV file.
package predict

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/txn-classifier/cmd/root"
	"fjacquet/txn-classifier/internal/common"
	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/models"

	"github.com/spf13/cobra"
)

// Options for one predict run.
type Options struct {
	Input  string
	Output string
}

var opts Options

// Cmd represents the predict command
var Cmd = &cobra.Command{
	Use:   "predict [description...]",
	Short: "Predict categories for transaction descriptions",
	Long: `Predict categories for transaction descriptions given as arguments, or for
every row of a transaction CSV (columns: date, description, amount, type, category).

Results are printed as a table, or written as CSV with --output.`,
	Example: `  txn-classifier predict "WALMART STORE #1234" "Shell gas"
  txn-classifier predict -i transactions.csv -o predictions.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.NewContainer()
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()
		return Run(cmd.Context(), c.GetEngine(), root.Log, opts, args, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Transaction CSV to classify")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write predictions to this CSV file")
}

// Predictor is the slice of the inference engine the command needs.
type Predictor interface {
	PredictBatch(ctx context.Context, descriptions []string) ([]models.PredictionResult, error)
	PredictForTransactions(ctx context.Context, records []models.TransactionRecord) ([]models.PredictionResult, error)
}

// Run classifies args, or the records in opts.Input, and writes the results.
func Run(ctx context.Context, p Predictor, logger logging.Logger, opts Options, args []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		descriptions []string
		results      []models.PredictionResult
		err          error
	)
	switch {
	case opts.Input != "" && len(args) > 0:
		return fmt.Errorf("pass descriptions as arguments or --input, not both")
	case opts.Input != "":
		records, readErr := common.ReadTransactionsCSV(opts.Input, logger)
		if readErr != nil {
			return readErr
		}
		descriptions = models.Descriptions(records)
		results, err = p.PredictForTransactions(ctx, records)
	case len(args) > 0:
		descriptions = args
		results, err = p.PredictBatch(ctx, args)
	default:
		return fmt.Errorf("no descriptions given")
	}
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	rows, err := common.NewPredictionRows(descriptions, results)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := common.WriteCSVFile(opts.Output, rows, logger); err != nil {
			return err
		}
		logger.Info("Predictions written",
			logging.Field{Key: logging.FieldOutputFile, Value: opts.Output},
			logging.Field{Key: logging.FieldCount, Value: len(rows)})
		return nil
	}
	return printTable(out, rows)
}

func printTable(out io.Writer, rows []common.PredictionRow) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESCRIPTION\tCATEGORY\tCONFIDENCE\tLOW")
	for _, r := range rows {
		low := ""
		if r.LowConfidence {
			low = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Description, r.Category, r.Confidence, low)
	}
	return tw.Flush()
}
