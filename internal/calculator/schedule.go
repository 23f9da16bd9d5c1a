package calculator

import (
	"github.com/shopspring/decimal"
)

// ScheduleYear summarises one year of an amortization schedule in cents-rounded amounts.
type ScheduleYear struct {
	Year           int             `json:"year"`
	InterestPaid   decimal.Decimal `json:"interest_paid"`
	PrincipalPaid  decimal.Decimal `json:"principal_paid"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// YearlySchedule walks the loan month by month and rolls the rows up per year.
// The final month absorbs rounding so the closing balance reaches exactly zero.
func YearlySchedule(terms LoanTerms) ([]ScheduleYear, error) {
	res, err := Amortize(terms)
	if err != nil {
		return nil, err
	}

	payment := decimal.NewFromFloat(res.MonthlyPayment).Round(2)
	rate := decimal.NewFromFloat(terms.MonthlyRate())
	balance := decimal.NewFromFloat(terms.Principal).Round(2)

	years := make([]ScheduleYear, 0, (terms.TermMonths+11)/12)
	current := ScheduleYear{Year: 1}

	for month := 1; month <= terms.TermMonths; month++ {
		interest := balance.Mul(rate).Round(2)
		principal := payment.Sub(interest)
		if month == terms.TermMonths || principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)

		current.InterestPaid = current.InterestPaid.Add(interest)
		current.PrincipalPaid = current.PrincipalPaid.Add(principal)

		if month%12 == 0 || month == terms.TermMonths {
			current.ClosingBalance = balance
			years = append(years, current)
			current = ScheduleYear{Year: current.Year + 1}
		}
	}

	return years, nil
}
