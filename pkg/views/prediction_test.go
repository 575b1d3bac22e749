package views

import (
	"errors"
	"testing"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionInput_Parse(t *testing.T) {
	tx, err := TransactionInput{Amount: " 523.10 ", Time: "40000"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, 523.10, tx.Amount)
	assert.Equal(t, 40000.0, tx.Time)

	tx, err = TransactionInput{Amount: "1e3", Time: "0"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, tx.Amount)
}

func TestTransactionInput_ParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   TransactionInput
		missing []string
		invalid []string
		message string
	}{
		{"both missing", TransactionInput{}, []string{"amount", "time"}, nil, "please enter transaction amount and time"},
		{"blank time", TransactionInput{Amount: "10", Time: "   "}, []string{"time"}, nil, "please enter transaction time"},
		{"text amount", TransactionInput{Amount: "ten", Time: "5"}, nil, []string{"amount"}, "transaction amount must be a valid number"},
		{"nan amount", TransactionInput{Amount: "NaN", Time: "5"}, nil, []string{"amount"}, ""},
		{"infinite time", TransactionInput{Amount: "5", Time: "+Inf"}, nil, []string{"time"}, ""},
		{"mixed", TransactionInput{Amount: "", Time: "abc"}, []string{"amount"}, []string{"time"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.Parse()
			var verr *pkg.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.missing, verr.Missing)
			assert.Equal(t, tt.invalid, verr.Invalid)
			if tt.message != "" {
				assert.Equal(t, tt.message, verr.Error())
			}
		})
	}
}

func TestInsightsSnapshot_Validate(t *testing.T) {
	s := InsightsSnapshot{
		Overview:          &Overview{TotalTransactions: 10, FraudCount: 2, LegitimateCount: 8, FraudRate: 20},
		AmountStats:       &AmountStats{AvgFraudAmount: 200, AvgLegitAmount: 100},
		TimePatterns:      &TimePatterns{AverageTime: 3600},
		FraudDistribution: &FraudDistribution{LowAmount: 1, MediumAmount: 1},
	}
	assert.NoError(t, s.Validate())

	s.Overview.FraudCount = 11
	assert.Error(t, s.Validate(), "fraud count above total")

	s.Overview.FraudCount = 2
	s.TimePatterns = nil
	assert.Error(t, s.Validate(), "missing section")
}

func TestInsightsSnapshot_ValidateBuckets(t *testing.T) {
	tests := []struct {
		name    string
		buckets FraudDistribution
		valid   bool
	}{
		{"buckets equal fraud count", FraudDistribution{LowAmount: 5, MediumAmount: 3, HighAmount: 2}, true},
		{"buckets below fraud count", FraudDistribution{LowAmount: 1}, true},
		{"one bucket above fraud count", FraudDistribution{LowAmount: 50}, false},
		{"sum above fraud count", FraudDistribution{LowAmount: 5, MediumAmount: 5, HighAmount: 5}, false},
		{"every bucket above", FraudDistribution{LowAmount: 50, MediumAmount: 40, HighAmount: 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := tt.buckets
			s := InsightsSnapshot{
				Overview:          &Overview{TotalTransactions: 100, FraudCount: 10, LegitimateCount: 90, FraudRate: 10},
				AmountStats:       &AmountStats{},
				TimePatterns:      &TimePatterns{},
				FraudDistribution: &buckets,
			}
			if tt.valid {
				assert.NoError(t, s.Validate())
			} else {
				assert.Error(t, s.Validate())
			}
		})
	}
}
