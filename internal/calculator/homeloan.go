package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLoanTerms is returned when principal, rate or term is not positive.
var ErrInvalidLoanTerms = errors.New("invalid loan terms")

// ScenarioOffsets are the percentage-point rate shifts explored by RateScenarios.
var ScenarioOffsets = []float64{-1.0, -0.75, -0.5, -0.25, 0.25, 0.5, 0.75, 1.0}

// TermUnit is the unit a loan term was entered in.
type TermUnit string

const (
	TermYears  TermUnit = "years"
	TermMonths TermUnit = "months"
)

// TermInMonths converts a term in the given unit to whole months.
func TermInMonths(term float64, unit TermUnit) int {
	if unit == TermMonths {
		return int(math.Round(term))
	}
	return int(math.Round(term * 12))
}

// LoanTerms describes a fixed-rate loan. AnnualRate is a nominal percentage.
type LoanTerms struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	TermMonths int     `json:"term_months"`
}

// MonthlyRate is the periodic rate as a fraction.
func (t LoanTerms) MonthlyRate() float64 {
	return t.AnnualRate / 12 / 100
}

// Validate rejects terms that cannot be amortized.
func (t LoanTerms) Validate() error {
	switch {
	case t.Principal <= 0:
		return fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidLoanTerms, t.Principal)
	case t.AnnualRate <= 0:
		return fmt.Errorf("%w: rate must be positive, got %.4f", ErrInvalidLoanTerms, t.AnnualRate)
	case t.TermMonths <= 0:
		return fmt.Errorf("%w: term must be positive, got %d months", ErrInvalidLoanTerms, t.TermMonths)
	}
	return nil
}

// LoanResult is the outcome of amortizing a loan.
type LoanResult struct {
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"annual_rate"`
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// Amortize applies the annuity formula P·i·(1+i)^n / ((1+i)^n − 1).
func Amortize(terms LoanTerms) (LoanResult, error) {
	if err := terms.Validate(); err != nil {
		return LoanResult{}, err
	}

	i := terms.MonthlyRate()
	n := float64(terms.TermMonths)
	factor := math.Pow(1+i, n)
	monthly := terms.Principal * i * factor / (factor - 1)
	total := monthly * n

	return LoanResult{
		Principal:      terms.Principal,
		AnnualRate:     terms.AnnualRate,
		TermMonths:     terms.TermMonths,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - terms.Principal,
	}, nil
}

// RateScenario is the loan recomputed at an alternative rate.
type RateScenario struct {
	Label          string  `json:"label"`
	AnnualRate     float64 `json:"annual_rate"`
	Offset         float64 `json:"offset"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalInterest  float64 `json:"total_interest"`
	Difference     float64 `json:"difference"`
}

// ReferenceRate is a fixed historical rate used for comparison.
type ReferenceRate struct {
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

// RateScenarios recomputes the loan at each of ScenarioOffsets and at each
// reference rate. Scenarios whose rate would not be positive are skipped.
func RateScenarios(terms LoanTerms, refs []ReferenceRate) ([]RateScenario, error) {
	base, err := Amortize(terms)
	if err != nil {
		return nil, err
	}

	scenarios := make([]RateScenario, 0, len(ScenarioOffsets)+len(refs))

	add := func(label string, rate float64) error {
		alt := terms
		alt.AnnualRate = rate
		r, err := Amortize(alt)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, RateScenario{
			Label:          label,
			AnnualRate:     rate,
			Offset:         rate - terms.AnnualRate,
			MonthlyPayment: r.MonthlyPayment,
			TotalInterest:  r.TotalInterest,
			Difference:     r.MonthlyPayment - base.MonthlyPayment,
		})
		return nil
	}

	for _, off := range ScenarioOffsets {
		rate := terms.AnnualRate + off
		if rate <= 0 {
			continue
		}
		if err := add(fmt.Sprintf("%+.2f%%", off), rate); err != nil {
			return nil, err
		}
	}
	for _, ref := range refs {
		if ref.Rate <= 0 {
			continue
		}
		if err := add(ref.Label, ref.Rate); err != nil {
			return nil, err
		}
	}

	return scenarios, nil
}
