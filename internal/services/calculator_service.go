package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stwalsh4118/randwise/api/internal/calculator"
	"github.com/stwalsh4118/randwise/api/internal/datasets"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/logger"
)

// HomeLoanResult is the full home loan answer: the repayment, how it moves
// with the rate, and the year-by-year schedule.
type HomeLoanResult struct {
	calculator.LoanResult
	Price          float64                   `json:"price"`
	Deposit        float64                   `json:"deposit"`
	DepositPercent float64                   `json:"deposit_percent"`
	Scenarios      []calculator.RateScenario `json:"scenarios"`
	Schedule       []calculator.ScheduleYear `json:"schedule"`
}

// ErrUncomputable is returned for inputs that pass validation but that an
// engine rejects or cannot represent, such as an accrual that overflows.
var ErrUncomputable = errors.New("inputs cannot be computed")

// CalculatorService defines the calculator operations.
// Every method validates its form first and returns the
// validator.ValidationErrors unchanged when it is invalid; no engine runs on
// invalid input.
type CalculatorService interface {
	IncomeTax(ctx context.Context, f *forms.IncomeTaxForm) (calculator.TaxComputationResult, error)
	HomeLoan(ctx context.Context, f *forms.HomeLoanForm) (HomeLoanResult, error)
	LTV(ctx context.Context, f *forms.LTVForm) (calculator.LTVResult, error)
	Interest(ctx context.Context, f *forms.InterestForm) (calculator.InterestResult, error)
	TFSA(ctx context.Context, f *forms.TFSAForm) (calculator.TFSAResult, error)

	// Evaluate dispatches on the concrete form type.
	// Returns forms.ErrUnknownCalculator for an unsupported form.
	Evaluate(ctx context.Context, f forms.Form) (interface{}, error)
}

// calculatorService is the concrete implementation of CalculatorService.
type calculatorService struct {
	log *logger.Logger
	now func() time.Time
}

// NewCalculatorService creates a CalculatorService. now dates TFSA projections.
func NewCalculatorService(log *logger.Logger, now func() time.Time) CalculatorService {
	if now == nil {
		now = time.Now
	}
	return &calculatorService{
		log: log,
		now: now,
	}
}

func (s *calculatorService) validate(f forms.Form) error {
	if err := forms.Validate(f); err != nil {
		s.log.Warn("Rejected calculator input", map[string]interface{}{
			"calculator": f.Name(),
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

func (s *calculatorService) IncomeTax(_ context.Context, f *forms.IncomeTaxForm) (calculator.TaxComputationResult, error) {
	if err := s.validate(f); err != nil {
		return calculator.TaxComputationResult{}, err
	}

	result, err := calculator.CalculateIncomeTax(f.Input())
	if err != nil {
		return calculator.TaxComputationResult{}, fmt.Errorf("%w: income tax: %w", ErrUncomputable, err)
	}

	s.log.Debug("Computed income tax", map[string]interface{}{
		"tax_year":    result.TaxYear,
		"tax_payable": result.TaxPayable,
	})
	return result, nil
}

func (s *calculatorService) HomeLoan(_ context.Context, f *forms.HomeLoanForm) (HomeLoanResult, error) {
	if err := s.validate(f); err != nil {
		return HomeLoanResult{}, err
	}

	terms := f.Terms()
	loan, err := calculator.Amortize(terms)
	if err != nil {
		return HomeLoanResult{}, fmt.Errorf("%w: home loan: %w", ErrUncomputable, err)
	}
	scenarios, err := calculator.RateScenarios(terms, datasets.PrimeReferenceRates())
	if err != nil {
		return HomeLoanResult{}, fmt.Errorf("%w: home loan scenarios: %w", ErrUncomputable, err)
	}
	schedule, err := calculator.YearlySchedule(terms)
	if err != nil {
		return HomeLoanResult{}, fmt.Errorf("%w: home loan schedule: %w", ErrUncomputable, err)
	}

	s.log.Debug("Computed home loan", map[string]interface{}{
		"principal":       loan.Principal,
		"term_months":     loan.TermMonths,
		"monthly_payment": loan.MonthlyPayment,
	})

	return HomeLoanResult{
		LoanResult:     loan,
		Price:          f.Price,
		Deposit:        f.Deposit,
		DepositPercent: f.Deposit / f.Price * 100,
		Scenarios:      scenarios,
		Schedule:       schedule,
	}, nil
}

func (s *calculatorService) LTV(_ context.Context, f *forms.LTVForm) (calculator.LTVResult, error) {
	if err := s.validate(f); err != nil {
		return calculator.LTVResult{}, err
	}
	return calculator.CalculateLTV(f.Input()), nil
}

func (s *calculatorService) Interest(_ context.Context, f *forms.InterestForm) (calculator.InterestResult, error) {
	if err := s.validate(f); err != nil {
		return calculator.InterestResult{}, err
	}
	result, err := calculator.CalculateInterest(f.Input())
	if err != nil {
		return calculator.InterestResult{}, fmt.Errorf("%w: interest: %w", ErrUncomputable, err)
	}
	return result, nil
}

func (s *calculatorService) TFSA(_ context.Context, f *forms.TFSAForm) (calculator.TFSAResult, error) {
	if err := s.validate(f); err != nil {
		return calculator.TFSAResult{}, err
	}

	result, err := calculator.CalculateTFSA(f.Input(), s.now())
	if err != nil {
		return calculator.TFSAResult{}, fmt.Errorf("%w: tfsa: %w", ErrUncomputable, err)
	}
	if result.ExceedsAnnualCap {
		s.log.Info("TFSA contribution exceeds annual cap", map[string]interface{}{
			"annual_contribution": result.AnnualContribution,
		})
	}
	return result, nil
}

func (s *calculatorService) Evaluate(ctx context.Context, f forms.Form) (interface{}, error) {
	result, err := s.evaluate(ctx, f)
	if err != nil {
		return nil, err
	}
	// Results are stored and rendered as JSON; one that cannot be encoded
	// would fail after the status line is written.
	if _, err := json.Marshal(result); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUncomputable, f.Name(), err)
	}
	return result, nil
}

func (s *calculatorService) evaluate(ctx context.Context, f forms.Form) (interface{}, error) {
	switch form := f.(type) {
	case *forms.IncomeTaxForm:
		return s.IncomeTax(ctx, form)
	case *forms.HomeLoanForm:
		return s.HomeLoan(ctx, form)
	case *forms.LTVForm:
		return s.LTV(ctx, form)
	case *forms.InterestForm:
		return s.Interest(ctx, form)
	case *forms.TFSAForm:
		return s.TFSA(ctx, form)
	default:
		return nil, fmt.Errorf("%w: %T", forms.ErrUnknownCalculator, f)
	}
}
