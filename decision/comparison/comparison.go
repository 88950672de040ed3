// Package comparison ranks a solar projection against fixed-rate investments.
package comparison

import (
	"math"
	"sort"
)

// SolarName is the entry name of the solar projection in a ranking.
const SolarName = "Solar"

// Benchmark is an alternative investment growing at a fixed annual rate.
type Benchmark struct {
	Name       string  `json:"name"`
	AnnualRate float64 `json:"annual_rate"`
}

// DefaultBenchmarks are the alternatives shown when a profile names none.
func DefaultBenchmarks() []Benchmark {
	return []Benchmark{
		{Name: "Bank deposit", AnnualRate: 0.22},
		{Name: "Gold", AnnualRate: 0.30},
		{Name: "Stock market", AnnualRate: 0.25},
	}
}

// Entry is one ranked investment.
type Entry struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	AnnualRate float64 `json:"annual_rate,omitempty"`
	TotalValue float64 `json:"total_value"`
	NetProfit  float64 `json:"net_profit"`
	Multiple   float64 `json:"multiple"`
	Solar      bool    `json:"solar"`
}

// GrowthValue compounds initialCost annually for years.
func GrowthValue(initialCost, annualRate float64, years int) float64 {
	return initialCost * math.Pow(1+annualRate, float64(years))
}

// Compare returns solar followed by each benchmark, ordered by net profit
// descending. Equal net profits keep their input order, solar first.
func Compare(initialCost, solarTotal float64, horizonYears int, benchmarks []Benchmark) []Entry {
	entries := make([]Entry, 0, len(benchmarks)+1)
	entries = append(entries, newEntry(SolarName, 0, initialCost, solarTotal, true))
	for _, b := range benchmarks {
		entries = append(entries, newEntry(b.Name, b.AnnualRate, initialCost, GrowthValue(initialCost, b.AnnualRate, horizonYears), false))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NetProfit > entries[j].NetProfit
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func newEntry(name string, rate, cost, total float64, solar bool) Entry {
	e := Entry{
		Name:       name,
		AnnualRate: rate,
		TotalValue: total,
		NetProfit:  total - cost,
		Solar:      solar,
	}
	if cost > 0 {
		e.Multiple = total / cost
	}
	return e
}

// SolarRank returns the 1-based position of the solar entry, or 0.
func SolarRank(entries []Entry) int {
	for _, e := range entries {
		if e.Solar {
			return e.Rank
		}
	}
	return 0
}

// Best returns the top entry.
func Best(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[0], true
}
