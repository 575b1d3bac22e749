package derived

import (
	"math"
	"strconv"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/shopspring/decimal"
)

const secondsPerHour = 3600

var hundred = decimal.NewFromInt(100)

// Summary bundles every derived figure for one snapshot.
type Summary struct {
	FraudAmountPremiumPercent     Figure `json:"fraudAmountPremiumPercent"`
	AverageTimeHours              Figure `json:"averageTimeHours"`
	LowAmountFraudSharePercent    Figure `json:"lowAmountFraudSharePercent"`
	MediumAmountFraudSharePercent Figure `json:"mediumAmountFraudSharePercent"`
	HighAmountFraudSharePercent   Figure `json:"highAmountFraudSharePercent"`
	PeakFraudHour                 Figure `json:"peakFraudHour"`
}

// Compute evaluates every figure.
func Compute(s views.InsightsSnapshot) Summary {
	return Summary{
		FraudAmountPremiumPercent:     FraudAmountPremiumPercent(s),
		AverageTimeHours:              AverageTimeHours(s),
		LowAmountFraudSharePercent:    LowAmountFraudSharePercent(s),
		MediumAmountFraudSharePercent: MediumAmountFraudSharePercent(s),
		HighAmountFraudSharePercent:   HighAmountFraudSharePercent(s),
		PeakFraudHour:                 PeakFraudHour(s),
	}
}

// FraudAmountPremiumPercent is the average fraudulent amount as a percentage of the average legitimate amount.
func FraudAmountPremiumPercent(s views.InsightsSnapshot) Figure {
	if s.AmountStats == nil {
		return NotComputable
	}
	return percent(s.AmountStats.AvgFraudAmount, s.AmountStats.AvgLegitAmount)
}

// AverageTimeHours converts the corpus average time offset from seconds to whole hours.
func AverageTimeHours(s views.InsightsSnapshot) Figure {
	if s.TimePatterns == nil || !finite(s.TimePatterns.AverageTime) {
		return NotComputable
	}
	return round(decimal.NewFromFloat(s.TimePatterns.AverageTime).Div(decimal.NewFromInt(secondsPerHour)))
}

// LowAmountFraudSharePercent is the share of fraud cases in the low amount bucket.
func LowAmountFraudSharePercent(s views.InsightsSnapshot) Figure {
	if s.FraudDistribution == nil {
		return NotComputable
	}
	return fraudShare(s, s.FraudDistribution.LowAmount)
}

func MediumAmountFraudSharePercent(s views.InsightsSnapshot) Figure {
	if s.FraudDistribution == nil {
		return NotComputable
	}
	return fraudShare(s, s.FraudDistribution.MediumAmount)
}

func HighAmountFraudSharePercent(s views.InsightsSnapshot) Figure {
	if s.FraudDistribution == nil {
		return NotComputable
	}
	return fraudShare(s, s.FraudDistribution.HighAmount)
}

// PeakFraudHour is the hour of day with the most fraud cases; the earliest hour wins a tie.
// The full hourly map is preferred, top_fraud_hours is the fallback.
func PeakFraudHour(s views.InsightsSnapshot) Figure {
	if s.TimePatterns == nil {
		return NotComputable
	}
	hours := s.TimePatterns.FraudByHour
	if len(hours) == 0 {
		hours = s.TimePatterns.TopFraudHours
	}

	best, bestCount := -1, int64(0)
	for key, count := range hours {
		hour, err := strconv.Atoi(key)
		if err != nil || hour < 0 || hour > 23 || count <= 0 {
			continue
		}
		if count > bestCount || (count == bestCount && hour < best) {
			best, bestCount = hour, count
		}
	}
	if best < 0 {
		return NotComputable
	}
	return Whole(int64(best))
}

func fraudShare(s views.InsightsSnapshot, bucket int64) Figure {
	if s.Overview == nil || s.Overview.FraudCount == 0 {
		return NotComputable
	}
	return round(decimal.NewFromInt(bucket).Mul(hundred).Div(decimal.NewFromInt(s.Overview.FraudCount)))
}

func percent(num, den float64) Figure {
	if den == 0 || !finite(num) || !finite(den) {
		return NotComputable
	}
	return round(decimal.NewFromFloat(num).Mul(hundred).Div(decimal.NewFromFloat(den)))
}

// round goes to the nearest integer, ties away from zero.
func round(d decimal.Decimal) Figure {
	return Whole(d.Round(0).IntPart())
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
