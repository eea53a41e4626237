package site

import (
	"cmp"
	"slices"
)

// AllYears selects every result in FilterResults.
const AllYears = "All"

type Result struct {
	ID          string  `toml:"id"`
	StudentName string  `toml:"student_name"`
	Percentage  float64 `toml:"percentage"`
	Standard    string  `toml:"standard"`
	Year        string  `toml:"year"`
}

type Results []Result

// Years lists the distinct years, newest first, behind AllYears.
func (rs Results) Years() []string {
	years := []string{}
	for _, r := range rs {
		if !slices.Contains(years, r.Year) {
			years = append(years, r.Year)
		}
	}
	slices.SortFunc(years, func(a, b string) int { return cmp.Compare(b, a) })
	return append([]string{AllYears}, years...)
}

// FilterResults keeps results from year; AllYears or "" keeps everything.
func (rs Results) FilterResults(year string) Results {
	if year == "" || year == AllYears {
		return rs
	}
	out := Results{}
	for _, r := range rs {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// Topper returns the highest percentage across every year. Ties go to the
// earlier entry.
func (rs Results) Topper() (Result, bool) {
	if len(rs) == 0 {
		return Result{}, false
	}
	best := rs[0]
	for _, r := range rs[1:] {
		if r.Percentage > best.Percentage {
			best = r
		}
	}
	return best, true
}
