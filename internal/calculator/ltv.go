package calculator

// LTVMode selects which of loan amount or deposit was entered.
type LTVMode string

const (
	LTVModeLoan    LTVMode = "loan"
	LTVModeDeposit LTVMode = "deposit"
)

// LTV status bands. They are informational only.
const (
	LTVStatusExcellent = "Excellent"
	LTVStatusGood      = "Good"
	LTVStatusFair      = "Fair"
	LTVStatusFullLoan  = "100% Loan"
)

// LTVInput holds a property value and either a loan amount or a deposit.
type LTVInput struct {
	PropertyValue float64
	LoanAmount    float64
	Deposit       float64
	Mode          LTVMode
}

// LTVResult is the loan-to-value breakdown.
type LTVResult struct {
	PropertyValue float64 `json:"property_value"`
	LoanAmount    float64 `json:"loan_amount"`
	Deposit       float64 `json:"deposit"`
	LTV           float64 `json:"ltv"`
	Equity        float64 `json:"equity"`
	Status        string  `json:"status"`
}

// CalculateLTV derives the missing amount and the LTV/equity percentages.
func CalculateLTV(in LTVInput) LTVResult {
	loan := in.LoanAmount
	if in.Mode == LTVModeDeposit {
		loan = in.PropertyValue - in.Deposit
	}

	ltv := 0.0
	if in.PropertyValue > 0 {
		ltv = loan * 100 / in.PropertyValue
	}

	return LTVResult{
		PropertyValue: in.PropertyValue,
		LoanAmount:    loan,
		Deposit:       in.PropertyValue - loan,
		LTV:           ltv,
		Equity:        100 - ltv,
		Status:        LTVStatus(ltv),
	}
}

// LTVStatus maps an LTV percentage to its band.
func LTVStatus(ltv float64) string {
	switch {
	case ltv <= 80:
		return LTVStatusExcellent
	case ltv <= 90:
		return LTVStatusGood
	case ltv < 100:
		return LTVStatusFair
	default:
		return LTVStatusFullLoan
	}
}
