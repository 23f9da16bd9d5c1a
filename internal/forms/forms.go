// Package forms defines the input form of every calculator: its default
// state, the URL parameters it is synced with and the constraints checked
// before any engine runs.
//
// Constraints are declared once as `binding` tags, so input bound by gin and
// state decoded from a deep link are validated by the same rules.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/randwise/api/internal/calculator"
	"github.com/stwalsh4118/randwise/api/internal/urlstate"
)

// Calculator names as used in routes and persisted state.
const (
	NameIncomeTax = "income-tax"
	NameHomeLoan  = "home-loan"
	NameLTV       = "ltv"
	NameInterest  = "interest"
	NameTFSA      = "tfsa"
)

// ErrUnknownCalculator is returned for a calculator name with no form.
var ErrUnknownCalculator = errors.New("unknown calculator")

// Form is the mutable input state of one calculator instance.
type Form interface {
	// Name is the calculator name.
	Name() string
	// Fields binds the form's values to their URL parameters.
	Fields() []urlstate.Field
	// Reset restores the default state in place.
	Reset()
}

var constructors = map[string]func() Form{
	NameIncomeTax: func() Form { return NewIncomeTaxForm() },
	NameHomeLoan:  func() Form { return NewHomeLoanForm() },
	NameLTV:       func() Form { return NewLTVForm() },
	NameInterest:  func() Form { return NewInterestForm() },
	NameTFSA:      func() Form { return NewTFSAForm() },
}

// Names lists the calculators in display order.
func Names() []string {
	return []string{NameIncomeTax, NameHomeLoan, NameLTV, NameInterest, NameTFSA}
}

// New returns a form in its default state.
func New(name string) (Form, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalculator, name)
	}
	return ctor(), nil
}

var registerOnce sync.Once

// RegisterValidators installs the custom rules and the form-tag field naming
// on gin's validator engine. It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("forms: gin validator engine is not go-playground/validator")
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		if err := v.RegisterValidation("taxyear", func(fl validator.FieldLevel) bool {
			return calculator.IsTaxYear(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("forms: register taxyear rule: %v", err))
		}

		v.RegisterStructValidation(validateHomeLoanTerm, HomeLoanForm{})
	})
}

// Validate checks f against its binding constraints. A failure is returned as
// validator.ValidationErrors.
func Validate(f Form) error {
	RegisterValidators()
	return binding.Validator.ValidateStruct(f)
}

// Resolution is the outcome of applying a deep link to a form.
type Resolution struct {
	// FromURL is set when at least one managed parameter was present.
	FromURL bool
	// Reset is set when the deep link failed decoding or validation and the
	// form was restored to its defaults.
	Reset bool
	// Changed lists the store keys updated from the URL.
	Changed []string
	// Query is the canonical query after resolution.
	Query url.Values
	// Err is the decode or validation failure behind a reset.
	Err error
}

// Resolve applies the managed parameters of query to f. An invalid deep link
// never yields a partially applied form: f is reset and the managed
// parameters are dropped from the returned query.
func Resolve(f Form, query url.Values) Resolution {
	res := Resolution{Query: query}
	if !urlstate.Present(f.Fields(), query) {
		return res
	}
	res.FromURL = true

	changed, err := urlstate.Sync(f.Fields(), query)
	if err == nil {
		err = Validate(f)
	}
	if err != nil {
		f.Reset()
		res.Reset = true
		res.Err = err
		res.Query = urlstate.Clear(f.Fields(), query)
		return res
	}

	res.Changed = changed
	return res
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
