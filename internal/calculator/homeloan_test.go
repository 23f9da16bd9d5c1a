package calculator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmortize_Scenario(t *testing.T) {
	terms := LoanTerms{Principal: 900000, AnnualRate: 10.5, TermMonths: TermInMonths(20, TermYears)}
	require.Equal(t, 240, terms.TermMonths)

	result, err := Amortize(terms)
	require.NoError(t, err)

	i := 0.105 / 12
	factor := math.Pow(1+i, 240)
	expected := 900000 * i * factor / (factor - 1)

	assert.Equal(t, expected, result.MonthlyPayment)
	assert.InDelta(t, 8985.42, result.MonthlyPayment, 0.01)
}

func TestAmortize_Identities(t *testing.T) {
	cases := []LoanTerms{
		{Principal: 900000, AnnualRate: 10.5, TermMonths: 240},
		{Principal: 1500000, AnnualRate: 11.75, TermMonths: 360},
		{Principal: 50000, AnnualRate: 21, TermMonths: 12},
	}

	for _, terms := range cases {
		result, err := Amortize(terms)
		require.NoError(t, err)

		assert.Equal(t, result.MonthlyPayment*float64(terms.TermMonths), result.TotalPayment)
		assert.Equal(t, result.TotalPayment-terms.Principal, result.TotalInterest)
	}
}

func TestAmortize_ApproachesStraightLineAsRateVanishes(t *testing.T) {
	terms := LoanTerms{Principal: 120000, AnnualRate: 1e-7, TermMonths: 120}

	result, err := Amortize(terms)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, result.MonthlyPayment, 1e-3)
}

func TestAmortize_RejectsInvalidTerms(t *testing.T) {
	tests := []struct {
		name  string
		terms LoanTerms
	}{
		{name: "zero principal", terms: LoanTerms{Principal: 0, AnnualRate: 10, TermMonths: 12}},
		{name: "negative principal", terms: LoanTerms{Principal: -1, AnnualRate: 10, TermMonths: 12}},
		{name: "zero rate", terms: LoanTerms{Principal: 1000, AnnualRate: 0, TermMonths: 12}},
		{name: "zero term", terms: LoanTerms{Principal: 1000, AnnualRate: 10, TermMonths: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Amortize(tt.terms)
			assert.ErrorIs(t, err, ErrInvalidLoanTerms)
		})
	}
}

func TestTermInMonths(t *testing.T) {
	assert.Equal(t, 240, TermInMonths(20, TermYears))
	assert.Equal(t, 6, TermInMonths(0.5, TermYears))
	assert.Equal(t, 180, TermInMonths(180, TermMonths))
}

func TestRateScenarios(t *testing.T) {
	terms := LoanTerms{Principal: 900000, AnnualRate: 10.5, TermMonths: 240}
	refs := []ReferenceRate{{Label: "2008 peak", Rate: 15.5}, {Label: "2020 low", Rate: 7}}

	scenarios, err := RateScenarios(terms, refs)
	require.NoError(t, err)
	require.Len(t, scenarios, len(ScenarioOffsets)+len(refs))

	for _, s := range scenarios {
		alt := terms
		alt.AnnualRate = s.AnnualRate
		direct, err := Amortize(alt)
		require.NoError(t, err)
		assert.Equal(t, direct.MonthlyPayment, s.MonthlyPayment, "scenario %s", s.Label)

		if s.Offset > 0 {
			assert.Greater(t, s.Difference, 0.0)
		} else {
			assert.Less(t, s.Difference, 0.0)
		}
	}

	assert.Equal(t, "2008 peak", scenarios[len(scenarios)-2].Label)
	assert.Equal(t, 15.5, scenarios[len(scenarios)-2].AnnualRate)
}

func TestRateScenarios_SkipsNonPositiveRates(t *testing.T) {
	terms := LoanTerms{Principal: 100000, AnnualRate: 0.5, TermMonths: 60}

	scenarios, err := RateScenarios(terms, nil)
	require.NoError(t, err)

	// -1.0, -0.75 and -0.5 would make the rate non-positive.
	assert.Len(t, scenarios, len(ScenarioOffsets)-3)
	for _, s := range scenarios {
		assert.Greater(t, s.AnnualRate, 0.0)
	}
}

func TestYearlySchedule(t *testing.T) {
	terms := LoanTerms{Principal: 900000, AnnualRate: 10.5, TermMonths: 240}

	years, err := YearlySchedule(terms)
	require.NoError(t, err)
	require.Len(t, years, 20)

	principal := decimal.Zero
	for i, y := range years {
		assert.Equal(t, i+1, y.Year)
		principal = principal.Add(y.PrincipalPaid)
	}

	assert.True(t, years[19].ClosingBalance.IsZero(), "loan must be fully repaid")
	assert.True(t, principal.Equal(decimal.NewFromInt(900000)), "principal repaid %s", principal)
	assert.True(t, years[0].InterestPaid.GreaterThan(years[19].InterestPaid), "interest share shrinks over time")
}

func TestYearlySchedule_PartialFinalYear(t *testing.T) {
	years, err := YearlySchedule(LoanTerms{Principal: 10000, AnnualRate: 12, TermMonths: 18})
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.True(t, years[1].ClosingBalance.IsZero())
}
