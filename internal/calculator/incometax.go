package calculator

import (
	"math"
)

// Age thresholds for the secondary and tertiary rebates.
const (
	SecondaryRebateAge = 65
	TertiaryRebateAge  = 75
)

// IncomeFrequency describes how an entered income amount recurs.
type IncomeFrequency string

const (
	FrequencyAnnual  IncomeFrequency = "annual"
	FrequencyMonthly IncomeFrequency = "monthly"
)

// AnnualiseIncome converts an income amount at the given frequency to a yearly figure.
func AnnualiseIncome(amount float64, frequency IncomeFrequency) float64 {
	if frequency == FrequencyMonthly {
		return amount * 12
	}
	return amount
}

// IncomeTaxInput is the validated input to CalculateIncomeTax.
type IncomeTaxInput struct {
	AnnualIncome float64
	Age          int
	TaxYear      string
	Salaried     bool
}

// BracketShare is the slice of income that falls inside one bracket.
type BracketShare struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max,omitempty"`
	Rate     float64 `json:"rate"`
	Income   float64 `json:"income"`
	Tax      float64 `json:"tax"`
	Marginal bool    `json:"marginal"`
}

// YearComparison compares a result against the preceding tax year.
type YearComparison struct {
	TaxYear            string  `json:"tax_year"`
	TaxPayable         float64 `json:"tax_payable"`
	TakeHomeAnnual     float64 `json:"take_home_annual"`
	TaxDifference      float64 `json:"tax_difference"`
	TakeHomeDifference float64 `json:"take_home_difference"`
}

// TaxComputationResult is the full income tax breakdown for one tax year.
type TaxComputationResult struct {
	TaxYear          string          `json:"tax_year"`
	TaxableIncome    float64         `json:"taxable_income"`
	TaxBeforeRebates float64         `json:"tax_before_rebates"`
	Rebates          float64         `json:"rebates"`
	TaxPayable       float64         `json:"tax_payable"`
	MonthlyTax       float64         `json:"monthly_tax"`
	EffectiveRate    float64         `json:"effective_rate"`
	MarginalRate     float64         `json:"marginal_rate"`
	UIFMonthly       float64         `json:"uif_monthly"`
	UIFAnnual        float64         `json:"uif_annual"`
	TakeHomeAnnual   float64         `json:"take_home_annual"`
	TakeHomeMonthly  float64         `json:"take_home_monthly"`
	Brackets         []BracketShare  `json:"brackets,omitempty"`
	Comparison       *YearComparison `json:"comparison,omitempty"`
}

// CalculateIncomeTax computes the tax breakdown for the input's tax year and,
// when a table exists for it, the preceding year for comparison.
func CalculateIncomeTax(in IncomeTaxInput) (TaxComputationResult, error) {
	table, err := LookupTaxYear(in.TaxYear)
	if err != nil {
		return TaxComputationResult{}, err
	}

	result := computeForTable(table, in)

	if prev, ok := PreviousTaxYear(in.TaxYear); ok {
		prior := computeForTable(prev, in)
		result.Comparison = &YearComparison{
			TaxYear:            prev.ID,
			TaxPayable:         prior.TaxPayable,
			TakeHomeAnnual:     prior.TakeHomeAnnual,
			TaxDifference:      result.TaxPayable - prior.TaxPayable,
			TakeHomeDifference: result.TakeHomeAnnual - prior.TakeHomeAnnual,
		}
	}

	return result, nil
}

func computeForTable(table TaxYearTable, in IncomeTaxInput) TaxComputationResult {
	income := math.Max(0, in.AnnualIncome)

	before := TaxBeforeRebates(table, income)
	rebates := TotalRebates(table.Rebates, in.Age)
	payable := math.Max(0, before-rebates)

	result := TaxComputationResult{
		TaxYear:          table.ID,
		TaxableIncome:    income,
		TaxBeforeRebates: before,
		Rebates:          rebates,
		TaxPayable:       payable,
		MonthlyTax:       payable / 12,
		MarginalRate:     MarginalRate(table, income),
		Brackets:         bracketShares(table, income),
	}

	if income > 0 {
		result.EffectiveRate = payable / income
	}

	if in.Salaried {
		result.UIFMonthly = math.Min(income/12, table.UIFCeiling) * UIFRate
		result.UIFAnnual = result.UIFMonthly * 12
	}

	result.TakeHomeAnnual = income - payable - result.UIFAnnual
	result.TakeHomeMonthly = result.TakeHomeAnnual / 12

	return result
}

// TaxBeforeRebates applies the bracket table to an annual income.
func TaxBeforeRebates(table TaxYearTable, income float64) float64 {
	idx := -1
	for i, b := range table.Brackets {
		if b.Min < income {
			idx = i
		}
	}
	if idx < 0 {
		return 0
	}

	b := table.Brackets[idx]
	taxable := income - b.Min
	if !b.Unbounded() {
		taxable = math.Min(taxable, b.Max-b.Min)
	}
	return b.CumulativeBase + taxable*b.Rate
}

// TotalRebates sums the rebates an individual of the given age qualifies for.
func TotalRebates(r Rebates, age int) float64 {
	total := r.Primary
	if age >= SecondaryRebateAge {
		total += r.Secondary
	}
	if age >= TertiaryRebateAge {
		total += r.Tertiary
	}
	return total
}

// MarginalRate is the rate of the highest bracket reached by income, or zero
// for a zero income.
func MarginalRate(table TaxYearTable, income float64) float64 {
	if income <= 0 {
		return 0
	}
	rate := 0.0
	for _, b := range table.Brackets {
		if b.Min <= income {
			rate = b.Rate
		}
	}
	return rate
}

func bracketShares(table TaxYearTable, income float64) []BracketShare {
	shares := make([]BracketShare, 0, len(table.Brackets))
	for _, b := range table.Brackets {
		if b.Min >= income {
			break
		}
		in := income - b.Min
		if !b.Unbounded() {
			in = math.Min(in, b.Max-b.Min)
		}
		shares = append(shares, BracketShare{
			Min:    b.Min,
			Max:    b.Max,
			Rate:   b.Rate,
			Income: in,
			Tax:    in * b.Rate,
		})
	}
	if n := len(shares); n > 0 {
		shares[n-1].Marginal = true
	}
	return shares
}
