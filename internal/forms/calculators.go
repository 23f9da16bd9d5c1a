package forms

import (
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/randwise/api/internal/calculator"
	"github.com/stwalsh4118/randwise/api/internal/urlstate"
)

// IncomeTaxForm is the income tax calculator input.
type IncomeTaxForm struct {
	Income    float64 `form:"income" json:"income" binding:"required,gt=0,lte=1000000000000"`
	Frequency string  `form:"frequency" json:"frequency" binding:"oneof=annual monthly"`
	Age       int     `form:"age" json:"age" binding:"gte=0,lte=130"`
	Year      string  `form:"year" json:"year" binding:"taxyear"`
	Salary    bool    `form:"salary" json:"salary"`
	Advanced  bool    `form:"advanced" json:"advanced"`
}

// NewIncomeTaxForm returns the default income tax form.
func NewIncomeTaxForm() *IncomeTaxForm {
	return &IncomeTaxForm{
		Frequency: string(calculator.FrequencyAnnual),
		Age:       30,
		Year:      calculator.DefaultTaxYear(),
		Salary:    true,
	}
}

func (f *IncomeTaxForm) Name() string { return NameIncomeTax }

func (f *IncomeTaxForm) Reset() { *f = *NewIncomeTaxForm() }

func (f *IncomeTaxForm) Fields() []urlstate.Field {
	return []urlstate.Field{
		urlstate.NumberField("income", "income", &f.Income),
		urlstate.EnumField("frequency", "frequency", &f.Frequency,
			string(calculator.FrequencyAnnual), string(calculator.FrequencyMonthly)),
		urlstate.IntField("age", "age", &f.Age),
		urlstate.EnumField("year", "year", &f.Year, calculator.TaxYears()...),
		urlstate.BoolField("salary", "salary", &f.Salary),
		urlstate.BoolField("advanced", "advanced", &f.Advanced),
	}
}

// Input converts the form to engine input.
func (f *IncomeTaxForm) Input() calculator.IncomeTaxInput {
	return calculator.IncomeTaxInput{
		AnnualIncome: calculator.AnnualiseIncome(f.Income, calculator.IncomeFrequency(f.Frequency)),
		Age:          f.Age,
		TaxYear:      f.Year,
		Salaried:     f.Salary,
	}
}

// HomeLoanForm is the home loan calculator input.
type HomeLoanForm struct {
	Price    float64 `form:"price" json:"price" binding:"required,gt=0,lte=1000000000000"`
	Deposit  float64 `form:"deposit" json:"deposit" binding:"gte=0,ltfield=Price"`
	Rate     float64 `form:"rate" json:"rate" binding:"required,gt=0,lte=100"`
	Term     float64 `form:"term" json:"term" binding:"required,gt=0,lte=600"`
	TermUnit string  `form:"termUnit" json:"termUnit" binding:"oneof=years months"`
}

// NewHomeLoanForm returns the default home loan form.
func NewHomeLoanForm() *HomeLoanForm {
	return &HomeLoanForm{
		Rate:     10.5,
		Term:     20,
		TermUnit: string(calculator.TermYears),
	}
}

func (f *HomeLoanForm) Name() string { return NameHomeLoan }

func (f *HomeLoanForm) Reset() { *f = *NewHomeLoanForm() }

func (f *HomeLoanForm) Fields() []urlstate.Field {
	return []urlstate.Field{
		urlstate.NumberField("price", "price", &f.Price),
		urlstate.NumberField("deposit", "deposit", &f.Deposit),
		urlstate.NumberField("rate", "rate", &f.Rate),
		urlstate.NumberField("term", "term", &f.Term),
		urlstate.EnumField("termUnit", "termUnit", &f.TermUnit,
			string(calculator.TermYears), string(calculator.TermMonths)),
	}
}

// validateHomeLoanTerm rejects a positive term that rounds to zero months.
// Zero and negative terms are left to the field rules.
func validateHomeLoanTerm(sl validator.StructLevel) {
	f := sl.Current().Interface().(HomeLoanForm)
	if f.Term > 0 && calculator.TermInMonths(f.Term, calculator.TermUnit(f.TermUnit)) < 1 {
		sl.ReportError(f.Term, "term", "Term", "minmonths", "1")
	}
}

// Terms converts the form to loan terms; the deposit reduces the principal.
func (f *HomeLoanForm) Terms() calculator.LoanTerms {
	return calculator.LoanTerms{
		Principal:  f.Price - f.Deposit,
		AnnualRate: f.Rate,
		TermMonths: calculator.TermInMonths(f.Term, calculator.TermUnit(f.TermUnit)),
	}
}

// LTVForm is the loan-to-value calculator input.
type LTVForm struct {
	Property float64 `form:"property" json:"property" binding:"required,gt=0,lte=1000000000000"`
	Loan     float64 `form:"loan" json:"loan" binding:"gte=0,ltefield=Property"`
	Deposit  float64 `form:"deposit" json:"deposit" binding:"gte=0,ltefield=Property"`
	Mode     string  `form:"mode" json:"mode" binding:"oneof=loan deposit"`
}

// NewLTVForm returns the default LTV form.
func NewLTVForm() *LTVForm {
	return &LTVForm{Mode: string(calculator.LTVModeLoan)}
}

func (f *LTVForm) Name() string { return NameLTV }

func (f *LTVForm) Reset() { *f = *NewLTVForm() }

func (f *LTVForm) Fields() []urlstate.Field {
	return []urlstate.Field{
		urlstate.NumberField("property", "property", &f.Property),
		urlstate.NumberField("loan", "loan", &f.Loan),
		urlstate.NumberField("deposit", "deposit", &f.Deposit),
		urlstate.EnumField("mode", "mode", &f.Mode,
			string(calculator.LTVModeLoan), string(calculator.LTVModeDeposit)),
	}
}

// Input converts the form to engine input.
func (f *LTVForm) Input() calculator.LTVInput {
	return calculator.LTVInput{
		PropertyValue: f.Property,
		LoanAmount:    f.Loan,
		Deposit:       f.Deposit,
		Mode:          calculator.LTVMode(f.Mode),
	}
}

// InterestForm is the interest calculator input.
type InterestForm struct {
	Principal float64 `form:"principal" json:"principal" binding:"required,gt=0,lte=1000000000000"`
	Rate      float64 `form:"rate" json:"rate" binding:"required,gt=0,lte=1000"`
	Period    string  `form:"period" json:"period" binding:"oneof=annual monthly weekly daily hourly"`
	Type      string  `form:"type" json:"type" binding:"oneof=simple annually semi-annually quarterly monthly weekly daily hourly continuous"`
}

// NewInterestForm returns the default interest form.
func NewInterestForm() *InterestForm {
	return &InterestForm{
		Period: string(calculator.PeriodAnnual),
		Type:   string(calculator.CompoundMonthly),
	}
}

func (f *InterestForm) Name() string { return NameInterest }

func (f *InterestForm) Reset() { *f = *NewInterestForm() }

func (f *InterestForm) Fields() []urlstate.Field {
	return []urlstate.Field{
		urlstate.NumberField("principal", "principal", &f.Principal),
		urlstate.NumberField("rate", "rate", &f.Rate),
		urlstate.EnumField("period", "period", &f.Period, enumValues(calculator.RatePeriods)...),
		urlstate.EnumField("type", "type", &f.Type, enumValues(calculator.InterestTypes)...),
	}
}

// Input converts the form to engine input.
func (f *InterestForm) Input() calculator.InterestInput {
	return calculator.InterestInput{
		Principal: f.Principal,
		Rate:      f.Rate,
		Period:    calculator.RatePeriod(f.Period),
		Type:      calculator.InterestType(f.Type),
	}
}

// TFSAForm is the tax-free savings account calculator input.
type TFSAForm struct {
	Current      float64 `form:"current" json:"current" binding:"gte=0,lte=500000"`
	Contribution float64 `form:"contribution" json:"contribution" binding:"required,gte=0.01,lte=500000"`
	Unit         string  `form:"unit" json:"unit" binding:"oneof=monthly annual"`
}

// NewTFSAForm returns the default TFSA form.
func NewTFSAForm() *TFSAForm {
	return &TFSAForm{Unit: string(calculator.ContributionMonthly)}
}

func (f *TFSAForm) Name() string { return NameTFSA }

func (f *TFSAForm) Reset() { *f = *NewTFSAForm() }

func (f *TFSAForm) Fields() []urlstate.Field {
	return []urlstate.Field{
		urlstate.NumberField("current", "current", &f.Current),
		urlstate.NumberField("contribution", "contribution", &f.Contribution),
		urlstate.EnumField("unit", "unit", &f.Unit,
			string(calculator.ContributionMonthly), string(calculator.ContributionAnnual)),
	}
}

// Input converts the form to engine input.
func (f *TFSAForm) Input() calculator.TFSAInput {
	return calculator.TFSAInput{
		CurrentContributions: f.Current,
		Contribution:         f.Contribution,
		Unit:                 calculator.ContributionUnit(f.Unit),
	}
}
