// Package anomaly flags transaction amounts that are statistical outliers
// within their category.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/mlerror"
	"fjacquet/txn-classifier/internal/models"
)

const (
	// ZScoreThreshold is the absolute z-score above which an amount is flagged.
	ZScoreThreshold = 2.5
	// MinGroupSize is the smallest category group that gets scored.
	MinGroupSize = 3
	// scoreScale maps |z| onto [0,1]; |z| >= scoreScale scores 1.
	scoreScale = 5.0
	// loggedAnomalies caps the per-call info logging.
	loggedAnomalies = 3
)

// Detector scores amounts per category with a z-score rule. It holds no
// mutable state.
type Detector struct {
	logger logging.Logger
}

// NewDetector creates a detector.
func NewDetector(logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Detector{logger: logger}
}

// DetectAmountAnomalies returns the outliers among inputs, most anomalous
// first. Fewer than models.MinAnomalyTransactions inputs yield no results,
// whatever their content. Larger batches are validated as a whole before
// scoring. At most max(1, floor(len(inputs)*contamination)) results are
// returned.
func (d *Detector) DetectAmountAnomalies(inputs []models.AnomalyInput, contamination float64) ([]models.AnomalyResult, error) {
	if len(inputs) < models.MinAnomalyTransactions {
		d.logger.Debug("Too few transactions for anomaly detection",
			logging.Field{Key: logging.FieldCount, Value: len(inputs)})
		return []models.AnomalyResult{}, nil
	}

	if err := validateContamination(contamination); err != nil {
		return nil, err
	}
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}

	results := []models.AnomalyResult{}
	for _, g := range groupByCategory(inputs) {
		if len(g.Members) < MinGroupSize || g.StdDev == 0 || math.IsNaN(g.StdDev) {
			continue
		}
		for _, m := range g.Members {
			z := (m.Amount - g.Mean) / g.StdDev
			if math.Abs(z) <= ZScoreThreshold {
				continue
			}
			results = append(results, models.AnomalyResult{
				Index:  m.Index,
				Score:  math.Min(math.Abs(z)/scoreScale, 1.0),
				Reason: reason(z, m.Amount, g.Category, g.Mean),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	// max(1, floor(n*contamination)), kept in float64 until bounded by len(results)
	limit := len(results)
	if capped := math.Floor(float64(len(inputs)) * contamination); capped < float64(limit) {
		limit = int(math.Max(capped, 1))
	}
	if len(results) > limit {
		results = results[:limit]
	}

	for i, r := range results {
		if i == loggedAnomalies {
			break
		}
		d.logger.Info("Anomaly detected",
			logging.Field{Key: logging.FieldIndex, Value: r.Index},
			logging.Field{Key: logging.FieldScore, Value: r.Score},
			logging.Field{Key: logging.FieldReason, Value: r.Reason})
	}
	d.logger.Debug("Anomaly detection completed",
		logging.Field{Key: logging.FieldCount, Value: len(inputs)},
		logging.Field{Key: "anomalies", Value: len(results)})

	return results, nil
}

// Groups returns the per-category statistics used for scoring, ordered by
// category name.
func (d *Detector) Groups(inputs []models.AnomalyInput) ([]models.CategoryGroup, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}
	return groupByCategory(inputs), nil
}

func validateContamination(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return &mlerror.InvalidInputError{
			Index:  -1,
			Field:  "contamination",
			Reason: fmt.Sprintf("contamination must be a finite number, got %v", c),
		}
	}
	return nil
}

func validateInputs(inputs []models.AnomalyInput) error {
	for i, in := range inputs {
		if in.Amount == nil {
			return &mlerror.InvalidInputError{Index: i, Field: "amount", Reason: "is required"}
		}
		if in.Category == nil {
			return &mlerror.InvalidInputError{Index: i, Field: "category", Reason: "is required"}
		}
	}
	return nil
}

// groupByCategory partitions inputs by exact category and computes the mean
// and sample standard deviation of each group. Single-member groups have a
// zero deviation.
func groupByCategory(inputs []models.AnomalyInput) []models.CategoryGroup {
	byCategory := make(map[string]*models.CategoryGroup)
	for i, in := range inputs {
		g, ok := byCategory[*in.Category]
		if !ok {
			g = &models.CategoryGroup{Category: *in.Category}
			byCategory[*in.Category] = g
		}
		g.Members = append(g.Members, models.AmountMember{Index: i, Amount: in.Amount.InexactFloat64()})
	}

	groups := make([]models.CategoryGroup, 0, len(byCategory))
	for _, g := range byCategory {
		g.Mean, g.StdDev = meanStd(g.Members)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

func meanStd(members []models.AmountMember) (float64, float64) {
	n := float64(len(members))
	var sum float64
	for _, m := range members {
		sum += m.Amount
	}
	mean := sum / n
	if len(members) < 2 {
		return mean, 0
	}

	var sq float64
	for _, m := range members {
		d := m.Amount - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (n - 1))
}

func reason(z, amount float64, category string, mean float64) string {
	direction := "high"
	if z < 0 {
		direction = "low"
	}
	return fmt.Sprintf("Unusually %s amount ($%s) for %s category (typical: $%s)",
		direction, models.FormatAmount(amount), category, models.FormatAmount(mean))
}
