// Package detect flags transactions with unusual amounts in a CSV file.
package detect

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

// Options for one detect run.
type Options struct {
	Input         string
	Output        string
	Contamination float64
	Classify      bool
}

var opts Options

// Cmd represents the detect command
var Cmd = &cobra.Command{
	Use:   "detect",
	Short: "Flag transactions whose amount is unusual for their category",
	Long: `Read a transaction CSV and flag rows whose amount deviates strongly from the
other amounts of the same category.

Rows without a category are rejected unless --classify is set, in which case the
model fills them in first.`,
	Example: `  txn-classifier detect -i transactions.csv
  txn-classifier detect -i transactions.csv --classify --contamination 0.1 -o anomalies.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.NewContainer()
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		run := opts
		if !cmd.Flags().Changed("contamination") {
			run.Contamination = c.GetConfig().Anomaly.Contamination
		}
		return Run(cmd.Context(), c.GetEngine(), c.GetDetector(), root.Log, run, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Transaction CSV to scan")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write anomalies to this CSV file")
	Cmd.Flags().Float64Var(&opts.Contamination, "contamination", models.DefaultContamination, "Upper bound on the flagged fraction; at least one anomaly is always kept")
	Cmd.Flags().BoolVar(&opts.Classify, "classify", false, "Predict the category of rows that have none")
	_ = Cmd.MarkFlagRequired("input")
}

// Classifier fills in missing categories.
type Classifier interface {
	PredictBatch(ctx context.Context, descriptions []string) ([]models.PredictionResult, error)
}

// Detector scores amounts per category.
type Detector interface {
	DetectAmountAnomalies(inputs []models.AnomalyInput, contamination float64) ([]models.AnomalyResult, error)
}

// Run scans opts.Input and writes one row per anomaly.
func Run(ctx context.Context, classifier Classifier, detector Detector, logger logging.Logger, opts Options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := common.ReadTransactionsCSV(opts.Input, logger)
	if err != nil {
		return err
	}
	if len(records) < models.MinAnomalyTransactions {
		return fmt.Errorf("at least %d transactions are required, got %d", models.MinAnomalyTransactions, len(records))
	}

	if opts.Classify {
		if err := fillCategories(ctx, classifier, records, logger); err != nil {
			return err
		}
	}

	results, err := detector.DetectAmountAnomalies(common.NewAnomalyInputs(records), opts.Contamination)
	if err != nil {
		return err
	}

	rows, err := common.NewAnomalyRows(records, results)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := common.WriteCSVFile(opts.Output, rows, logger); err != nil {
			return err
		}
		logger.Info("Anomalies written",
			logging.Field{Key: logging.FieldOutputFile, Value: opts.Output},
			logging.Field{Key: logging.FieldCount, Value: len(rows)})
		return nil
	}
	return printTable(out, rows)
}

// fillCategories predicts a category for every record that has none.
func fillCategories(ctx context.Context, classifier Classifier, records []models.TransactionRecord, logger logging.Logger) error {
	var (
		missing      []int
		descriptions []string
	)
	for i := range records {
		if records[i].Category == "" {
			missing = append(missing, i)
			descriptions = append(descriptions, records[i].Description)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	results, err := classifier.PredictBatch(ctx, descriptions)
	if err != nil {
		return fmt.Errorf("failed to classify uncategorized transactions: %w", err)
	}
	for j, i := range missing {
		records[i].Category = results[j].Category
	}

	logger.Debug("Filled missing categories", logging.Field{Key: logging.FieldCount, Value: len(missing)})
	return nil
}

func printTable(out io.Writer, rows []common.AnomalyRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No anomalies found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tDATE\tDESCRIPTION\tAMOUNT\tCATEGORY\tSCORE\tREASON")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.3f\t%s\n", r.Index, r.Date, r.Description, r.Amount, r.Category, r.Score, r.Reason)
	}
	return tw.Flush()
}
