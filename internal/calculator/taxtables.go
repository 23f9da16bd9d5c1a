// Package calculator holds the pure calculation engines behind the site's
// calculators: income tax, home loan amortization, interest accrual,
// loan-to-value and the TFSA contribution timeline.
//
// Every function in this package is side-effect free and safe to call
// concurrently. Input validation happens before these functions are reached.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// UIF contribution constants.
const (
	UIFRate           = 0.01
	UIFMonthlyCeiling = 17712.0
)

// ErrUnknownTaxYear is returned when a tax year identifier has no table.
var ErrUnknownTaxYear = errors.New("unknown tax year")

// TaxBracket is one contiguous income range taxed at a single marginal rate.
// Max is zero for the unbounded top bracket. CumulativeBase is the tax payable
// on an income of exactly Min.
type TaxBracket struct {
	Min            float64 `json:"min"`
	Max            float64 `json:"max,omitempty"`
	Rate           float64 `json:"rate"`
	CumulativeBase float64 `json:"cumulative_base"`
}

// Unbounded reports whether the bracket is the open-ended top bracket.
func (b TaxBracket) Unbounded() bool {
	return b.Max == 0
}

// Rebates are fixed credits subtracted from computed tax by age band.
type Rebates struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Tertiary  float64 `json:"tertiary"`
}

// TaxYearTable is the immutable SARS table for one tax year.
type TaxYearTable struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	Brackets   []TaxBracket `json:"brackets"`
	Rebates    Rebates      `json:"rebates"`
	UIFCeiling float64      `json:"uif_ceiling"`
}

// newTaxYearTable builds a table from ascending lower thresholds and their
// rates. The first threshold must be zero; each bracket ends where the next
// begins and the last is unbounded.
func newTaxYearTable(id string, thresholds, rates []float64, rebates Rebates) TaxYearTable {
	if len(thresholds) != len(rates) || len(thresholds) == 0 || thresholds[0] != 0 {
		panic(fmt.Sprintf("calculator: malformed tax table %s", id))
	}

	brackets := make([]TaxBracket, len(thresholds))
	base := 0.0
	for i := range thresholds {
		b := TaxBracket{
			Min:            thresholds[i],
			Rate:           rates[i],
			CumulativeBase: base,
		}
		if i+1 < len(thresholds) {
			b.Max = thresholds[i+1]
			base = roundCents(base + (b.Max-b.Min)*b.Rate)
		}
		brackets[i] = b
	}

	return TaxYearTable{
		ID:         id,
		Label:      id + " tax year",
		Brackets:   brackets,
		Rebates:    rebates,
		UIFCeiling: UIFMonthlyCeiling,
	}
}

var taxYearTables = map[string]TaxYearTable{
	"2022/2023": newTaxYearTable("2022/2023",
		[]float64{0, 226000, 353100, 488700, 641400, 817600, 1731600},
		[]float64{0.18, 0.26, 0.31, 0.36, 0.39, 0.41, 0.45},
		Rebates{Primary: 16425, Secondary: 9000, Tertiary: 2997},
	),
	"2023/2024": newTaxYearTable("2023/2024",
		[]float64{0, 237100, 370500, 512800, 673000, 857900, 1817000},
		[]float64{0.18, 0.26, 0.31, 0.36, 0.39, 0.41, 0.45},
		Rebates{Primary: 17235, Secondary: 9444, Tertiary: 3145},
	),
	"2024/2025": newTaxYearTable("2024/2025",
		[]float64{0, 237100, 370500, 512800, 673000, 857900, 1817000},
		[]float64{0.18, 0.26, 0.31, 0.36, 0.39, 0.41, 0.45},
		Rebates{Primary: 17235, Secondary: 9444, Tertiary: 3145},
	),
	"2025/2026": newTaxYearTable("2025/2026",
		[]float64{0, 262700, 410600, 567800, 746000, 950600, 2013200},
		[]float64{0.18, 0.26, 0.31, 0.36, 0.39, 0.41, 0.45},
		Rebates{Primary: 19095, Secondary: 10464, Tertiary: 3485},
	),
}

// TaxYears returns the supported tax year identifiers, oldest first.
func TaxYears() []string {
	years := make([]string, 0, len(taxYearTables))
	for id := range taxYearTables {
		years = append(years, id)
	}
	sort.Strings(years)
	return years
}

// DefaultTaxYear is the most recent supported tax year.
func DefaultTaxYear() string {
	years := TaxYears()
	return years[len(years)-1]
}

// LookupTaxYear returns the table for the given identifier.
func LookupTaxYear(id string) (TaxYearTable, error) {
	table, ok := taxYearTables[id]
	if !ok {
		return TaxYearTable{}, fmt.Errorf("%w: %q", ErrUnknownTaxYear, id)
	}
	return table, nil
}

// PreviousTaxYear returns the table immediately preceding id, if any.
func PreviousTaxYear(id string) (TaxYearTable, bool) {
	years := TaxYears()
	for i, y := range years {
		if y == id && i > 0 {
			return taxYearTables[years[i-1]], true
		}
	}
	return TaxYearTable{}, false
}

// IsTaxYear reports whether id names a supported tax year.
func IsTaxYear(id string) bool {
	_, ok := taxYearTables[id]
	return ok
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
