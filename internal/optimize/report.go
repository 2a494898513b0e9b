package optimize

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OptimizationReport is the merged outcome of one analysis cycle.
// The savings total always equals the sum of the savings of the
// underutilized results it contains.
type OptimizationReport struct {
	ReportID                      string                              `json:"report_id"`
	Timestamp                     time.Time                           `json:"timestamp"`
	PerProviderResults            map[Provider][]ClassificationResult `json:"per_provider_results"`
	EstimatedMonthlySavingsTotal  float64                             `json:"estimated_monthly_savings_total"`
	Recommendations               []string                            `json:"recommendations"`
}

// Aggregate merges classification results into a single report.
//
// Results are grouped by provider preserving their relative input
// order. The savings total is accumulated in a fixed order (provider
// order, then input order) with decimal arithmetic, so identical
// inputs produce bit-identical totals. Recommendations are ordered by
// descending saving, ties broken by ascending resource id, making the
// list independent of input permutation.
func Aggregate(results []ClassificationResult, at time.Time) OptimizationReport {
	perProvider := make(map[Provider][]ClassificationResult)
	for _, result := range results {
		perProvider[result.Provider] = append(perProvider[result.Provider], result)
	}

	total := decimal.Zero
	var flagged []ClassificationResult
	for _, provider := range Providers {
		for _, result := range perProvider[provider] {
			if !result.Underutilized {
				continue
			}
			total = total.Add(decimal.NewFromFloat(result.EstimatedMonthlySaving))
			flagged = append(flagged, result)
		}
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		if flagged[i].EstimatedMonthlySaving != flagged[j].EstimatedMonthlySaving {
			return flagged[i].EstimatedMonthlySaving > flagged[j].EstimatedMonthlySaving
		}
		return flagged[i].ResourceID < flagged[j].ResourceID
	})

	recommendations := make([]string, 0, len(flagged))
	for _, result := range flagged {
		recommendations = append(recommendations, Recommendation(result))
	}

	totalFloat, _ := total.Float64()

	return OptimizationReport{
		ReportID:                     uuid.NewString(),
		Timestamp:                    at,
		PerProviderResults:           perProvider,
		EstimatedMonthlySavingsTotal: totalFloat,
		Recommendations:              recommendations,
	}
}

// Recommendation renders one underutilized result as a human-readable
// suggestion.
func Recommendation(result ClassificationResult) string {
	amount := decimal.NewFromFloat(result.EstimatedMonthlySaving).StringFixed(2)
	return fmt.Sprintf("Consider stopping %s %s %s (estimated saving $%s/month)",
		result.Provider, result.Kind, result.ResourceID, amount)
}
