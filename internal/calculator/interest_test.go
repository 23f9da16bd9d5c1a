package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatePeriod_PerYear(t *testing.T) {
	assert.Equal(t, 1.0, PeriodAnnual.PerYear())
	assert.Equal(t, 12.0, PeriodMonthly.PerYear())
	assert.Equal(t, 52.0, PeriodWeekly.PerYear())
	assert.Equal(t, 365.0, PeriodDaily.PerYear())
	assert.Equal(t, 8760.0, PeriodHourly.PerYear())
}

func TestConvertRate_RoundTrip(t *testing.T) {
	for _, p := range RatePeriods {
		for _, rate := range []float64{0.0001, 0.75, 9.25, 120} {
			annual := ToAnnualRate(rate, p)
			assert.InDelta(t, rate, FromAnnualRate(annual, p), 1e-12*math.Max(1, rate), "period %s", p)
			assert.InDelta(t, rate, ConvertRate(rate, p, p), 1e-12*math.Max(1, rate), "period %s", p)
		}
	}

	assert.InDelta(t, 1.0, ConvertRate(12, PeriodAnnual, PeriodMonthly), 1e-12)
	assert.InDelta(t, 52.0, ConvertRate(1, PeriodWeekly, PeriodAnnual), 1e-12)
}

func TestAccruedValue_SimpleInterest(t *testing.T) {
	assert.InDelta(t, 1100.0, AccruedValue(1000, 0.10, InterestSimple, 1), 1e-9)
	assert.InDelta(t, 1050.0, AccruedValue(1000, 0.10, InterestSimple, 0.5), 1e-9)
}

func TestAccruedValue_Compounding(t *testing.T) {
	assert.InDelta(t, 1000*math.Pow(1+0.12/12, 12), AccruedValue(1000, 0.12, CompoundMonthly, 1), 1e-9)
	assert.InDelta(t, 1000*math.Exp(0.12), AccruedValue(1000, 0.12, CompoundContinuous, 1), 1e-9)
	assert.InDelta(t, 1210.0, AccruedValue(1000, 0.10, CompoundAnnually, 2), 1e-9)
}

func TestCompoundExceedsSimple(t *testing.T) {
	for _, kind := range InterestTypes {
		if kind == InterestSimple || kind == CompoundAnnually {
			continue
		}
		for _, rate := range []float64{0.01, 0.075, 0.2} {
			for _, years := range []float64{1, 2, 10} {
				simple := AccruedValue(5000, rate, InterestSimple, years)
				compound := AccruedValue(5000, rate, kind, years)
				assert.Greater(t, compound, simple, "%s at %.3f over %.0f years", kind, rate, years)
			}
		}
	}
}

func TestCalculateInterest_Buckets(t *testing.T) {
	result, err := CalculateInterest(InterestInput{
		Principal: 10000,
		Rate:      1,
		Period:    PeriodMonthly,
		Type:      InterestSimple,
	})
	require.NoError(t, err)

	assert.Equal(t, 12.0, result.AnnualRate)
	require.Len(t, result.Gains, len(RatePeriods))

	expected := map[RatePeriod]float64{
		PeriodAnnual:  1200,
		PeriodMonthly: 100,
		PeriodWeekly:  1200.0 / 52,
		PeriodDaily:   1200.0 / 365,
		PeriodHourly:  1200.0 / 8760,
	}
	for _, g := range result.Gains {
		assert.InDelta(t, expected[g.Period], g.Gain, 1e-9, "bucket %s", g.Period)
		assert.InDelta(t, 10000+g.Gain, g.Balance, 1e-9)
	}
	assert.InDelta(t, 12.0, result.EffectiveAnnualRate, 1e-9)
}

func TestCalculateInterest_EffectiveRateForCompounding(t *testing.T) {
	result, err := CalculateInterest(InterestInput{
		Principal: 10000,
		Rate:      12,
		Period:    PeriodAnnual,
		Type:      CompoundMonthly,
	})
	require.NoError(t, err)

	assert.InDelta(t, (math.Pow(1.01, 12)-1)*100, result.EffectiveAnnualRate, 1e-9)
	assert.InDelta(t, 10000*(math.Pow(1.01, 12)-1), result.Gains[0].Gain, 1e-6)
	assert.InDelta(t, 100.0, result.Gains[1].Gain, 1e-6, "one month of monthly compounding")
}

func TestCalculateInterest_RejectsOverflow(t *testing.T) {
	tests := []struct {
		name string
		in   InterestInput
	}{
		{"huge hourly rate, daily compounding", InterestInput{Principal: 1000, Rate: 1e300, Period: PeriodHourly, Type: CompoundDaily}},
		{"huge rate, continuous", InterestInput{Principal: 1000, Rate: 1e6, Period: PeriodAnnual, Type: CompoundContinuous}},
		{"ceiling rate, hourly compounding", InterestInput{Principal: 1000, Rate: 1000, Period: PeriodHourly, Type: CompoundHourly}},
		{"huge principal, simple", InterestInput{Principal: math.MaxFloat64, Rate: 50, Period: PeriodAnnual, Type: InterestSimple}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateInterest(tt.in)
			assert.ErrorIs(t, err, ErrNonFiniteResult)
		})
	}
}
