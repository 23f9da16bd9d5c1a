package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// TFSA contribution caps in rand.
const (
	TFSALifetimeCap = 500000.0
	TFSAAnnualCap   = 36000.0

	// MaxProjectionMonths bounds how far ahead a TFSA projection is dated.
	MaxProjectionMonths = 12 * 1000
)

// ErrProjectionOutOfRange is returned when the contribution is too small for
// the lifetime cap to be reached within MaxProjectionMonths.
var ErrProjectionOutOfRange = errors.New("projection out of range")

// ContributionUnit is how often a TFSA contribution is made.
type ContributionUnit string

const (
	ContributionMonthly ContributionUnit = "monthly"
	ContributionAnnual  ContributionUnit = "annual"
)

// TFSAInput is the validated input to CalculateTFSA.
type TFSAInput struct {
	CurrentContributions float64
	Contribution         float64
	Unit                 ContributionUnit
}

// TFSAResult is the projected timeline to the lifetime cap.
type TFSAResult struct {
	CurrentContributions float64   `json:"current_contributions"`
	MonthlyContribution  float64   `json:"monthly_contribution"`
	AnnualContribution   float64   `json:"annual_contribution"`
	Remaining            float64   `json:"remaining"`
	MonthsToMax          int       `json:"months_to_max"`
	YearsToMax           int       `json:"years_to_max"`
	RemainderMonths      int       `json:"remainder_months"`
	ProjectedDate        time.Time `json:"projected_date"`
	AlreadyMaxed         bool      `json:"already_maxed"`
	ExceedsAnnualCap     bool      `json:"exceeds_annual_cap"`
}

// CalculateTFSA projects when the lifetime cap is reached from now. Breaching
// the annual cap is reported but does not change the projection.
func CalculateTFSA(in TFSAInput, now time.Time) (TFSAResult, error) {
	monthly := in.Contribution
	if in.Unit == ContributionAnnual {
		monthly = in.Contribution / 12
	}
	annual := monthly * 12

	remaining := math.Max(0, TFSALifetimeCap-in.CurrentContributions)

	result := TFSAResult{
		CurrentContributions: in.CurrentContributions,
		MonthlyContribution:  monthly,
		AnnualContribution:   annual,
		Remaining:            remaining,
		AlreadyMaxed:         remaining == 0,
		ExceedsAnnualCap:     annual > TFSAAnnualCap,
		ProjectedDate:        now,
	}

	if remaining > 0 && monthly > 0 {
		months, ok := MonthsToReach(remaining, monthly)
		if !ok || months > MaxProjectionMonths {
			return TFSAResult{}, fmt.Errorf("%w: R%.2f a month does not reach the cap within %d months",
				ErrProjectionOutOfRange, monthly, MaxProjectionMonths)
		}
		result.MonthsToMax = months
		result.YearsToMax = months / 12
		result.RemainderMonths = months % 12
		result.ProjectedDate = now.AddDate(0, months, 0)
	}

	return result, nil
}

// MonthsToReach is the smallest whole number of monthly contributions that
// covers remaining. ok is false when the count does not fit in an int32.
func MonthsToReach(remaining, monthly float64) (months int, ok bool) {
	q := remaining / monthly
	if math.IsNaN(q) || q < 0 || q > math.MaxInt32 {
		return 0, false
	}

	months = int(math.Ceil(q))
	// Float division can leave ceil one short or one long.
	switch {
	case float64(months)*monthly < remaining:
		months++
	case months > 1 && float64(months-1)*monthly >= remaining:
		months--
	}
	return months, true
}
