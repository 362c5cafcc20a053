package scoring

import (
	"FireGar/internal/models/domain"
)

// GAR score bounds and classification boundaries over the 0-60 total.
const (
	MaxFactorScore = 10
	MaxTotalScore  = domain.FactorCount * MaxFactorScore

	lowMax      = 23
	moderateMax = 44
)

// Severity grades a single factor score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// TotalScore sums the six factor scores. Range [0,60].
func TotalScore(f domain.RiskFactors) int {
	total := 0
	for _, v := range f.Values() {
		total += v
	}
	return total
}

// Classify maps a total score to the overall GAR risk level:
// 0-23 low, 24-44 moderate, 45-60 high.
func Classify(total int) domain.RiskLevel {
	switch {
	case total <= lowMax:
		return domain.RiskLow
	case total <= moderateMax:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

// FactorSeverity grades one factor score: 0-4 low, 5-7 moderate, 8-10 high.
func FactorSeverity(value int) Severity {
	switch {
	case value <= 4:
		return SeverityLow
	case value <= 7:
		return SeverityModerate
	default:
		return SeverityHigh
	}
}

// MitigationRequired reports whether a factor score is high enough that
// mitigation text should be prompted for.
func MitigationRequired(value int) bool {
	return value >= 5
}
