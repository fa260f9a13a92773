// Package aggregate computes derived project summaries as pure folds over
// related records. No I/O, no side effects; callers load the inputs.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/sitelink/claimworks/internal/domain/entity"
)

// RiskLevel folds clause risk levels into a single project-level value:
// high wins over medium, medium over low. Empty input is low.
// Order-independent.
func RiskLevel(levels []entity.RiskLevel) entity.RiskLevel {
	result := entity.RiskLow
	for _, level := range levels {
		switch level {
		case entity.RiskHigh:
			return entity.RiskHigh
		case entity.RiskMedium:
			result = entity.RiskMedium
		}
	}
	return result
}

// RiskCounts tallies clauses per risk level
type RiskCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// CountRisk tallies clause risk levels for the project detail summary
func CountRisk(levels []entity.RiskLevel) RiskCounts {
	var counts RiskCounts
	for _, level := range levels {
		switch level {
		case entity.RiskLow:
			counts.Low++
		case entity.RiskMedium:
			counts.Medium++
		case entity.RiskHigh:
			counts.High++
		}
	}
	return counts
}

// ScopeCompleteness counts confirmed scope items against the total. The
// ratio, if a caller wants one, is the caller's division to make.
type ScopeCompleteness struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
}

// Completeness folds scope item statuses into totals
func Completeness(statuses []entity.ItemStatus) ScopeCompleteness {
	var result ScopeCompleteness
	for _, status := range statuses {
		result.Total++
		if status == entity.StatusConfirmed {
			result.Confirmed++
		}
	}
	return result
}

// AverageConfidence averages programme item confidences. A missing
// confidence counts as zero; an empty input averages to zero, never NaN.
func AverageConfidence(confidences []*float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		if c != nil {
			sum += *c
		}
	}
	return sum / float64(len(confidences))
}

// ClaimedAmount sums completed work values and approved variation amounts
// with exact decimal arithmetic. Callers filter work records to the claim
// period and variations to approved status before the fold.
func ClaimedAmount(workValues []decimal.Decimal, approvedVariations []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range workValues {
		total = total.Add(v)
	}
	for _, v := range approvedVariations {
		total = total.Add(v)
	}
	return total
}
