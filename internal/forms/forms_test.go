package forms

import (
	"errors"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/randwise/api/internal/calculator"
	"github.com/stwalsh4118/randwise/api/internal/urlstate"
)

func TestNew(t *testing.T) {
	for _, name := range Names() {
		f, err := New(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.Name())
	}

	_, err := New("mortgage")
	assert.ErrorIs(t, err, ErrUnknownCalculator)
}

func TestValidate_NamesViolatedConstraint(t *testing.T) {
	f := NewHomeLoanForm()
	f.Price = 1000000
	f.Deposit = 1200000

	err := Validate(f)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "deposit", verrs[0].Field())
	assert.Equal(t, "ltfield", verrs[0].Tag())
	assert.Equal(t, "Price", verrs[0].Param())
}

func TestValidate_TaxYearRule(t *testing.T) {
	f := NewIncomeTaxForm()
	f.Income = 500000

	require.NoError(t, Validate(f))

	f.Year = "1999/2000"
	err := Validate(f)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "year", verrs[0].Field())
	assert.Equal(t, "taxyear", verrs[0].Tag())
}

func TestValidate_HomeLoanTermInWholeMonths(t *testing.T) {
	tests := []struct {
		name    string
		term    float64
		unit    string
		wantErr bool
	}{
		{"a fraction of a month in years", 0.01, "years", true},
		{"under half a month", 0.4, "months", true},
		{"rounds up to one month", 0.5, "months", false},
		{"one month in years", 1.0 / 12, "years", false},
		{"twenty years", 20, "years", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewHomeLoanForm()
			f.Price = 1000000
			f.Term = tt.term
			f.TermUnit = tt.unit

			err := Validate(f)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, "term", verrs[0].Field())
			assert.Equal(t, "minmonths", verrs[0].Tag())
		})
	}
}

func TestValidate_DefaultsRequireUserInput(t *testing.T) {
	for _, name := range Names() {
		f, err := New(name)
		require.NoError(t, err)
		assert.Error(t, Validate(f), "%s defaults must not be computable without input", name)
	}
}

func TestResolve_NoManagedParams(t *testing.T) {
	f := NewLTVForm()
	query := url.Values{"utm_campaign": {"spring"}}

	res := Resolve(f, query)

	assert.False(t, res.FromURL)
	assert.False(t, res.Reset)
	assert.Equal(t, query, res.Query)
	assert.Equal(t, NewLTVForm(), f)
}

func TestResolve_ValidDeepLink(t *testing.T) {
	f := NewLTVForm()
	query := url.Values{"property": {"1000000"}, "deposit": {"200000"}, "mode": {"deposit"}}

	res := Resolve(f, query)

	require.NoError(t, res.Err)
	assert.True(t, res.FromURL)
	assert.False(t, res.Reset)
	assert.ElementsMatch(t, []string{"property", "deposit", "mode"}, res.Changed)
	assert.Equal(t, 1000000.0, f.Property)
	assert.Equal(t, 200000.0, f.Deposit)

	result := calculator.CalculateLTV(f.Input())
	assert.Equal(t, 80.0, result.LTV)
}

func TestResolve_InvalidDeepLinkResetsForm(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		query url.Values
	}{
		{
			name:  "ltv loan above property",
			form:  NewLTVForm(),
			query: url.Values{"property": {"500000"}, "loan": {"600000"}, "ref": {"x"}},
		},
		{
			name:  "home loan deposit equals price",
			form:  NewHomeLoanForm(),
			query: url.Values{"price": {"900000"}, "deposit": {"900000"}, "ref": {"x"}},
		},
		{
			name:  "income tax non numeric income",
			form:  NewIncomeTaxForm(),
			query: url.Values{"income": {"lots"}, "ref": {"x"}},
		},
		{
			name:  "income tax zero income",
			form:  NewIncomeTaxForm(),
			query: url.Values{"income": {"0"}, "age": {"40"}, "ref": {"x"}},
		},
		{
			name:  "interest unknown type",
			form:  NewInterestForm(),
			query: url.Values{"principal": {"1000"}, "rate": {"5"}, "type": {"fortnightly"}, "ref": {"x"}},
		},
		{
			name:  "tfsa current above lifetime cap",
			form:  NewTFSAForm(),
			query: url.Values{"current": {"600000"}, "contribution": {"3000"}, "ref": {"x"}},
		},
		{
			name:  "income tax astronomical income",
			form:  NewIncomeTaxForm(),
			query: url.Values{"income": {"1e13"}, "ref": {"x"}},
		},
		{
			name:  "home loan term under one month",
			form:  NewHomeLoanForm(),
			query: url.Values{"price": {"1000000"}, "rate": {"10"}, "term": {"0.01"}, "termUnit": {"years"}, "ref": {"x"}},
		},
		{
			name:  "home loan astronomical price",
			form:  NewHomeLoanForm(),
			query: url.Values{"price": {"1e300"}, "ref": {"x"}},
		},
		{
			name:  "ltv astronomical property",
			form:  NewLTVForm(),
			query: url.Values{"property": {"1e300"}, "loan": {"1"}, "ref": {"x"}},
		},
		{
			name:  "interest astronomical hourly rate",
			form:  NewInterestForm(),
			query: url.Values{"principal": {"1000"}, "rate": {"1e300"}, "period": {"hourly"}, "type": {"daily"}, "ref": {"x"}},
		},
		{
			name:  "interest astronomical principal",
			form:  NewInterestForm(),
			query: url.Values{"principal": {"1e300"}, "rate": {"5"}, "ref": {"x"}},
		},
		{
			name:  "tfsa vanishing contribution",
			form:  NewTFSAForm(),
			query: url.Values{"contribution": {"1e-20"}, "ref": {"x"}},
		},
		{
			name:  "tfsa astronomical contribution",
			form:  NewTFSAForm(),
			query: url.Values{"contribution": {"1e300"}, "unit": {"annual"}, "ref": {"x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.form, tt.query)

			assert.True(t, res.FromURL)
			assert.True(t, res.Reset)
			assert.Error(t, res.Err)
			assert.Equal(t, url.Values{"ref": {"x"}}, res.Query, "only managed params are cleared")

			fresh, err := New(tt.form.Name())
			require.NoError(t, err)
			assert.Equal(t, fresh, tt.form, "form must be back at its defaults")
		})
	}
}

func TestFields_MatchQueryParameterNames(t *testing.T) {
	expected := map[string][]string{
		NameHomeLoan:  {"price", "deposit", "rate", "term", "termUnit"},
		NameIncomeTax: {"income", "frequency", "age", "year", "salary", "advanced"},
		NameLTV:       {"property", "loan", "deposit", "mode"},
		NameInterest:  {"principal", "rate", "period", "type"},
		NameTFSA:      {"current", "contribution", "unit"},
	}

	for name, params := range expected {
		f, err := New(name)
		require.NoError(t, err)

		var got []string
		for _, p := range urlstate.Params(f.Fields()) {
			got = append(got, p)
		}
		assert.ElementsMatch(t, params, got, name)
	}
}

func TestHomeLoanForm_Terms(t *testing.T) {
	f := &HomeLoanForm{Price: 1000000, Deposit: 100000, Rate: 10.5, Term: 20, TermUnit: "years"}
	terms := f.Terms()

	assert.Equal(t, 900000.0, terms.Principal)
	assert.Equal(t, 240, terms.TermMonths)
}

func TestIncomeTaxForm_InputAnnualisesMonthlyIncome(t *testing.T) {
	f := NewIncomeTaxForm()
	f.Income = 50000
	f.Frequency = "monthly"

	assert.Equal(t, 600000.0, f.Input().AnnualIncome)
}
