// Package datasets holds the historical South African rate and inflation
// series behind the site's data visualizations.
package datasets

import (
	"errors"
	"fmt"
	"time"

	"github.com/stwalsh4118/randwise/api/internal/calculator"
)

// ErrUnknownDataset is returned when a slug names no dataset.
var ErrUnknownDataset = errors.New("unknown dataset")

// Point is a single observation. Value is a percentage.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Dataset is a named time series.
type Dataset struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
	Points      []Point  `json:"points"`
}

// Latest returns the most recent observation.
func (d Dataset) Latest() Point {
	return d.Points[len(d.Points)-1]
}

// High returns the highest observation, earliest first on ties.
func (d Dataset) High() Point {
	best := d.Points[0]
	for _, p := range d.Points[1:] {
		if p.Value > best.Value {
			best = p
		}
	}
	return best
}

// Low returns the lowest observation, earliest first on ties.
func (d Dataset) Low() Point {
	best := d.Points[0]
	for _, p := range d.Points[1:] {
		if p.Value < best.Value {
			best = p
		}
	}
	return best
}

// Slugs of the bundled datasets.
const (
	SlugPrimeRate = "prime-lending-rate"
	SlugRepoRate  = "repo-rate"
	SlugCPI       = "cpi-inflation"
)

// primeSpread is the fixed margin of the prime lending rate over the repo rate.
const primeSpread = 3.5

var primeChanges = []Point{
	{month(2008, 6), 15.5},
	{month(2008, 12), 15.0},
	{month(2009, 2), 14.0},
	{month(2009, 4), 13.0},
	{month(2009, 5), 11.0},
	{month(2009, 8), 10.5},
	{month(2010, 3), 10.0},
	{month(2010, 9), 9.5},
	{month(2010, 11), 9.0},
	{month(2012, 7), 8.5},
	{month(2014, 1), 9.0},
	{month(2014, 7), 9.25},
	{month(2015, 7), 9.5},
	{month(2015, 11), 9.75},
	{month(2016, 1), 10.25},
	{month(2016, 3), 10.5},
	{month(2017, 7), 10.25},
	{month(2018, 3), 10.0},
	{month(2018, 11), 10.25},
	{month(2019, 7), 10.0},
	{month(2020, 1), 9.75},
	{month(2020, 3), 8.75},
	{month(2020, 4), 7.75},
	{month(2020, 5), 7.25},
	{month(2020, 7), 7.0},
	{month(2021, 11), 7.25},
	{month(2022, 1), 7.5},
	{month(2022, 3), 7.75},
	{month(2022, 5), 8.25},
	{month(2022, 7), 9.0},
	{month(2022, 9), 9.75},
	{month(2022, 11), 10.5},
	{month(2023, 1), 10.75},
	{month(2023, 3), 11.25},
	{month(2023, 5), 11.75},
	{month(2024, 9), 11.5},
	{month(2024, 11), 11.25},
	{month(2025, 1), 11.0},
	{month(2025, 5), 10.75},
	{month(2025, 7), 10.5},
}

var cpiAnnual = []Point{
	{month(2015, 12), 4.6},
	{month(2016, 12), 6.3},
	{month(2017, 12), 5.3},
	{month(2018, 12), 4.6},
	{month(2019, 12), 4.1},
	{month(2020, 12), 3.3},
	{month(2021, 12), 4.5},
	{month(2022, 12), 6.9},
	{month(2023, 12), 6.0},
	{month(2024, 12), 4.4},
}

var all = []Dataset{
	{
		Slug:        SlugPrimeRate,
		Title:       "Prime lending rate history",
		Description: "Every change to the South African prime lending rate since the 2008 peak.",
		Unit:        "percent",
		Source:      "South African Reserve Bank",
		Tags:        []string{"prime", "interest rates", "home loans", "history"},
		Points:      primeChanges,
	},
	{
		Slug:        SlugRepoRate,
		Title:       "Repo rate history",
		Description: "The SARB repurchase rate that anchors prime, since 2008.",
		Unit:        "percent",
		Source:      "South African Reserve Bank",
		Tags:        []string{"repo", "sarb", "interest rates", "monetary policy"},
		Points:      shift(primeChanges, -primeSpread),
	},
	{
		Slug:        SlugCPI,
		Title:       "CPI inflation",
		Description: "Year-on-year consumer price inflation at each December.",
		Unit:        "percent",
		Source:      "Statistics South Africa",
		Tags:        []string{"inflation", "cpi", "cost of living"},
		Points:      cpiAnnual,
	},
}

// All returns every dataset in display order.
func All() []Dataset {
	out := make([]Dataset, len(all))
	copy(out, all)
	return out
}

// Lookup returns the dataset with the given slug.
func Lookup(slug string) (Dataset, error) {
	for _, d := range all {
		if d.Slug == slug {
			return d, nil
		}
	}
	return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, slug)
}

// PrimeReferenceRates returns the historical prime high and low used to put a
// home loan quote in context.
func PrimeReferenceRates() []calculator.ReferenceRate {
	prime, _ := Lookup(SlugPrimeRate)
	high, low := prime.High(), prime.Low()
	return []calculator.ReferenceRate{
		{Label: fmt.Sprintf("Prime high (%s)", high.Date.Format("Jan 2006")), Rate: high.Value},
		{Label: fmt.Sprintf("Prime low (%s)", low.Date.Format("Jan 2006")), Rate: low.Value},
	}
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func shift(points []Point, by float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Date: p.Date, Value: p.Value + by}
	}
	return out
}
