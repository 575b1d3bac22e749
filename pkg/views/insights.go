package views

import "github.com/go-playground/validator/v10"

// InsightsSnapshot is the aggregate summary of the transaction corpus served by GET /data-insights.
// It is fetched once per session and treated as read-only by every consumer, maps included.
type InsightsSnapshot struct {
	Overview          *Overview          `json:"overview" validate:"required"`
	AmountStats       *AmountStats       `json:"amount_stats" validate:"required"`
	TimePatterns      *TimePatterns      `json:"time_patterns" validate:"required"`
	FraudDistribution *FraudDistribution `json:"fraud_distribution" validate:"required"`
}

type Overview struct {
	TotalTransactions int64   `json:"total_transactions" validate:"gte=0"`
	FraudCount        int64   `json:"fraud_count" validate:"gte=0,ltefield=TotalTransactions"`
	LegitimateCount   int64   `json:"legitimate_count" validate:"gte=0"`
	FraudRate         float64 `json:"fraud_rate" validate:"gte=0,lte=100"`
}

type AmountStats struct {
	AverageTransaction float64 `json:"average_transaction"`
	MaxTransaction     float64 `json:"max_transaction"`
	MinTransaction     float64 `json:"min_transaction"`
	AvgFraudAmount     float64 `json:"avg_fraud_amount"`
	AvgLegitAmount     float64 `json:"avg_legit_amount"`
}

// TimePatterns keys its hourly maps by hour of day ("0".."23").
type TimePatterns struct {
	AverageTime   float64          `json:"average_time"`
	TopFraudHours map[string]int64 `json:"top_fraud_hours,omitempty"`
	FraudByHour   map[string]int64 `json:"fraud_by_hour,omitempty"`
	LegitByHour   map[string]int64 `json:"legit_by_hour,omitempty"`
}

// FraudDistribution buckets fraud cases by amount: low <= 10, medium (10, 100], high > 100.
type FraudDistribution struct {
	LowAmount    int64 `json:"low_amount" validate:"gte=0"`
	MediumAmount int64 `json:"medium_amount" validate:"gte=0"`
	HighAmount   int64 `json:"high_amount" validate:"gte=0"`
}

// Validate checks the document shape. A failure means the upstream body is malformed.
func (s InsightsSnapshot) Validate() error {
	return validate.Struct(s)
}

// bucketsWithinFraudCount requires every amount bucket, and their sum, to stay within overview.fraud_count.
func bucketsWithinFraudCount(sl validator.StructLevel) {
	s := sl.Current().Interface().(InsightsSnapshot)
	if s.Overview == nil || s.FraudDistribution == nil {
		return
	}
	limit := s.Overview.FraudCount
	d := s.FraudDistribution
	if d.LowAmount > limit {
		sl.ReportError(d.LowAmount, "FraudDistribution.LowAmount", "LowAmount", "ltefraudcount", "")
	}
	if d.MediumAmount > limit {
		sl.ReportError(d.MediumAmount, "FraudDistribution.MediumAmount", "MediumAmount", "ltefraudcount", "")
	}
	if d.HighAmount > limit {
		sl.ReportError(d.HighAmount, "FraudDistribution.HighAmount", "HighAmount", "ltefraudcount", "")
	}
	if sum := d.LowAmount + d.MediumAmount + d.HighAmount; sum > limit {
		sl.ReportError(sum, "FraudDistribution", "FraudDistribution", "ltefraudcount", "")
	}
}
