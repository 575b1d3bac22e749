package views

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(bucketsWithinFraudCount, InsightsSnapshot{})
	return v
}

// ValidateStruct checks v against its validate tags with the package validator.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

// TransactionInput is a candidate transaction as entered by the user.
type TransactionInput struct {
	Amount string `json:"amount" validate:"required"`
	Time   string `json:"time" validate:"required"`
}

// Transaction is a validated TransactionInput.
type Transaction struct {
	Amount float64
	Time   float64
}

// Parse validates the input and converts it. Every rejected field is named in the returned *pkg.ValidationError.
func (in TransactionInput) Parse() (Transaction, error) {
	trimmed := TransactionInput{Amount: strings.TrimSpace(in.Amount), Time: strings.TrimSpace(in.Time)}

	verr := &pkg.ValidationError{}
	if err := validate.Struct(trimmed); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Transaction{}, err
		}
		for _, fe := range fieldErrs {
			verr.Missing = append(verr.Missing, strings.ToLower(fe.Field()))
		}
	}

	var tx Transaction
	var ok bool
	if trimmed.Amount != "" {
		if tx.Amount, ok = parseFinite(trimmed.Amount); !ok {
			verr.Invalid = append(verr.Invalid, "amount")
		}
	}
	if trimmed.Time != "" {
		if tx.Time, ok = parseFinite(trimmed.Time); !ok {
			verr.Invalid = append(verr.Invalid, "time")
		}
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return Transaction{}, verr
	}
	return tx, nil
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// PredictionResult is the verdict for one transaction. It is never mutated once received.
type PredictionResult struct {
	Label             pkg.Verdict `json:"label"`
	ConfidencePercent float64     `json:"confidencePercent"`
}
