package content

import (
	"context"

	"github.com/stwalsh4118/randwise/api/internal/datasets"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/search"
)

// CalculatorInfo describes one calculator page.
type CalculatorInfo struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Href        string   `json:"href"`
	Params      []string `json:"params"`
	Tags        []string `json:"tags"`
}

var calculatorCatalogue = map[string]CalculatorInfo{
	forms.NameIncomeTax: {
		Title:       "Income tax calculator",
		Description: "Estimate your SARS income tax, rebates, UIF and take-home pay for the current tax year.",
		Tags:        []string{"income tax", "paye", "sars", "salary", "uif"},
	},
	forms.NameHomeLoan: {
		Title:       "Home loan calculator",
		Description: "Work out your monthly bond repayment, total interest and how rate changes affect it.",
		Tags:        []string{"bond", "mortgage", "property", "repayment", "prime"},
	},
	forms.NameLTV: {
		Title:       "Loan-to-value calculator",
		Description: "See what share of a property's value your bond covers and how much equity you hold.",
		Tags:        []string{"ltv", "deposit", "equity", "bond", "property"},
	},
	forms.NameInterest: {
		Title:       "Interest calculator",
		Description: "Convert interest rates between periods and compare simple and compound growth.",
		Tags:        []string{"compound interest", "simple interest", "savings", "rate conversion"},
	},
	forms.NameTFSA: {
		Title:       "Tax-free savings calculator",
		Description: "Track your TFSA contributions against the annual and lifetime limits.",
		Tags:        []string{"tfsa", "tax-free", "savings", "contribution limit"},
	},
}

// Calculators returns the calculator catalogue in display order.
func Calculators() []CalculatorInfo {
	out := make([]CalculatorInfo, 0, len(calculatorCatalogue))
	for _, name := range forms.Names() {
		info := calculatorCatalogue[name]
		info.Slug = name
		info.Href = "/calculators/" + name
		if f, err := forms.New(name); err == nil {
			for _, field := range f.Fields() {
				info.Params = append(info.Params, field.Param)
			}
		}
		out = append(out, info)
	}
	return out
}

// CalculatorSource turns the calculator catalogue into search records.
type CalculatorSource struct{}

func (CalculatorSource) Name() string { return string(search.CategoryCalculator) }

func (CalculatorSource) Records(_ context.Context) ([]search.Record, error) {
	calcs := Calculators()
	recs := make([]search.Record, len(calcs))
	for i, c := range calcs {
		recs[i] = search.Record{
			ID:          "calculator/" + c.Slug,
			Title:       c.Title,
			Description: c.Description,
			Href:        c.Href,
			Category:    search.CategoryCalculator,
			Tags:        c.Tags,
		}
	}
	return recs, nil
}

// DatasetSource turns the historical datasets into search records.
type DatasetSource struct{}

func (DatasetSource) Name() string { return string(search.CategoryData) }

func (DatasetSource) Records(_ context.Context) ([]search.Record, error) {
	all := datasets.All()
	recs := make([]search.Record, len(all))
	for i, d := range all {
		latest := d.Latest().Date
		recs[i] = search.Record{
			ID:          "data/" + d.Slug,
			Title:       d.Title,
			Description: d.Description,
			Href:        "/data/" + d.Slug,
			Category:    search.CategoryData,
			Date:        &latest,
			Tags:        d.Tags,
		}
	}
	return recs, nil
}
