package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFiniteResult is returned when an accrual overflows a float64.
var ErrNonFiniteResult = errors.New("result is not a finite number")

// RatePeriod is the period an entered interest rate applies to.
type RatePeriod string

const (
	PeriodAnnual  RatePeriod = "annual"
	PeriodMonthly RatePeriod = "monthly"
	PeriodWeekly  RatePeriod = "weekly"
	PeriodDaily   RatePeriod = "daily"
	PeriodHourly  RatePeriod = "hourly"
)

// RatePeriods lists the supported periods from longest to shortest.
var RatePeriods = []RatePeriod{PeriodAnnual, PeriodMonthly, PeriodWeekly, PeriodDaily, PeriodHourly}

// PerYear is the number of occurrences of the period in a year. Weeks and
// days use fixed 52 and 365 counts rather than calendar-accurate ones.
func (p RatePeriod) PerYear() float64 {
	switch p {
	case PeriodMonthly:
		return 12
	case PeriodWeekly:
		return 52
	case PeriodDaily:
		return 365
	case PeriodHourly:
		return 365 * 24
	default:
		return 1
	}
}

// Years is the duration of one period expressed in years.
func (p RatePeriod) Years() float64 {
	return 1 / p.PerYear()
}

// ToAnnualRate scales a rate entered for period up to an annual rate.
func ToAnnualRate(rate float64, period RatePeriod) float64 {
	return rate * period.PerYear()
}

// FromAnnualRate scales an annual rate down to the given period.
func FromAnnualRate(annual float64, period RatePeriod) float64 {
	return annual / period.PerYear()
}

// ConvertRate re-expresses a rate from one period to another.
func ConvertRate(rate float64, from, to RatePeriod) float64 {
	return FromAnnualRate(ToAnnualRate(rate, from), to)
}

// InterestType selects simple interest or a compounding frequency.
type InterestType string

const (
	InterestSimple       InterestType = "simple"
	CompoundAnnually     InterestType = "annually"
	CompoundSemiAnnually InterestType = "semi-annually"
	CompoundQuarterly    InterestType = "quarterly"
	CompoundMonthly      InterestType = "monthly"
	CompoundWeekly       InterestType = "weekly"
	CompoundDaily        InterestType = "daily"
	CompoundHourly       InterestType = "hourly"
	CompoundContinuous   InterestType = "continuous"
)

// InterestTypes lists every supported interest type.
var InterestTypes = []InterestType{
	InterestSimple,
	CompoundAnnually,
	CompoundSemiAnnually,
	CompoundQuarterly,
	CompoundMonthly,
	CompoundWeekly,
	CompoundDaily,
	CompoundHourly,
	CompoundContinuous,
}

// CompoundingPerYear returns the number of compounding periods per year, or
// zero for simple and continuous interest.
func (t InterestType) CompoundingPerYear() float64 {
	switch t {
	case CompoundAnnually:
		return 1
	case CompoundSemiAnnually:
		return 2
	case CompoundQuarterly:
		return 4
	case CompoundMonthly:
		return 12
	case CompoundWeekly:
		return 52
	case CompoundDaily:
		return 365
	case CompoundHourly:
		return 365 * 24
	default:
		return 0
	}
}

// AccruedValue is the balance after years at annualRate (a fraction).
func AccruedValue(principal, annualRate float64, kind InterestType, years float64) float64 {
	switch kind {
	case InterestSimple:
		return principal * (1 + annualRate*years)
	case CompoundContinuous:
		return principal * math.Exp(annualRate*years)
	}
	n := kind.CompoundingPerYear()
	if n == 0 {
		n = 1
	}
	return principal * math.Pow(1+annualRate/n, n*years)
}

// InterestInput is the validated input to CalculateInterest. Rate is a
// percentage for Period.
type InterestInput struct {
	Principal float64
	Rate      float64
	Period    RatePeriod
	Type      InterestType
}

// InterestGain is the gain accrued over one reporting bucket.
type InterestGain struct {
	Period  RatePeriod `json:"period"`
	Gain    float64    `json:"gain"`
	Balance float64    `json:"balance"`
}

// InterestResult reports gains for every bucket from annual down to hourly.
type InterestResult struct {
	Principal           float64        `json:"principal"`
	AnnualRate          float64        `json:"annual_rate"`
	EffectiveAnnualRate float64        `json:"effective_annual_rate"`
	Type                InterestType   `json:"type"`
	Gains               []InterestGain `json:"gains"`
}

// CalculateInterest normalises the rate to annual and evaluates the same
// closed-form accrual for each bucket duration.
func CalculateInterest(in InterestInput) (InterestResult, error) {
	annualPct := ToAnnualRate(in.Rate, in.Period)
	annual := annualPct / 100

	result := InterestResult{
		Principal:  in.Principal,
		AnnualRate: annualPct,
		Type:       in.Type,
		Gains:      make([]InterestGain, 0, len(RatePeriods)),
	}

	if in.Principal > 0 {
		oneYear := AccruedValue(in.Principal, annual, in.Type, 1)
		result.EffectiveAnnualRate = (oneYear/in.Principal - 1) * 100
	}

	if !isFinite(result.EffectiveAnnualRate) {
		return InterestResult{}, fmt.Errorf("%w: effective annual rate", ErrNonFiniteResult)
	}

	for _, p := range RatePeriods {
		balance := AccruedValue(in.Principal, annual, in.Type, p.Years())
		if !isFinite(balance) {
			return InterestResult{}, fmt.Errorf("%w: %s balance", ErrNonFiniteResult, p)
		}
		result.Gains = append(result.Gains, InterestGain{
			Period:  p,
			Gain:    balance - in.Principal,
			Balance: balance,
		})
	}

	return result, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
