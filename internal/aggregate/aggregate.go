// Package aggregate turns the alumni table and a filter selection into the
// grouped counts, percentages and frequency tables shown on the dashboard.
//
// Every function here is pure: the table is only read, results are freshly
// allocated, and the same inputs always produce the same output.
package aggregate

import (
	"sort"
	"strings"

	"alumni/internal/core"
)

// CourseByYear counts rows per (course, batch) among the rows whose batch
// and course are both selected. TotalForGroup is the per-course count over
// the same filtered subset. Rows are ordered by course, then batch.
func CourseByYear(t *core.Table, sel core.Selection, opts Options) CourseChart {
	years := sel.Set(core.FieldBatch)
	courses := sel.Set(core.FieldCourse)

	type pair struct{ course, batch string }
	counts := map[pair]int{}
	totals := map[string]int{}
	matched := 0
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if !contains(years, r.Batch) || !contains(courses, r.Course) {
			continue
		}
		counts[pair{r.Course, r.Batch}]++
		totals[r.Course]++
		matched++
	}

	keys := make([]pair, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := strings.Compare(keys[i].course, keys[j].course); c != 0 {
			return c < 0
		}
		return core.CompareBatch(keys[i].batch, keys[j].batch) < 0
	})

	denom := denominator(opts.Basis, t.Len(), matched)
	rows := make([]GroupedCount, 0, len(keys))
	for _, k := range keys {
		n := counts[k]
		rows = append(rows, GroupedCount{
			Course:        k.course,
			Batch:         k.batch,
			Count:         n,
			TotalForGroup: totals[k.course],
			Percentage:    percentage(n, denom),
		})
	}

	chart := CourseChart{
		Rows:         rows,
		ShouldRender: len(courses) >= opts.MinSelected,
		Summary:      summarize(courseCounts(rows), matched),
	}
	if !chart.ShouldRender {
		chart.Caption = CourseCaption
	}
	return chart
}

// ByUniversity counts rows per university among the rows whose batch and
// university are both selected, ordered by university.
func ByUniversity(t *core.Table, sel core.Selection, opts Options) UniversityChart {
	years := sel.Set(core.FieldBatch)
	universities := sel.Set(core.FieldUniversity)

	counts := map[string]int{}
	matched := 0
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if !contains(years, r.Batch) || !contains(universities, r.University) {
			continue
		}
		counts[r.University]++
		matched++
	}

	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)

	denom := denominator(opts.Basis, t.Len(), matched)
	rows := make([]UniversityCount, 0, len(names))
	counted := make([]float64, 0, len(names))
	for _, name := range names {
		n := counts[name]
		rows = append(rows, UniversityCount{
			University: name,
			Count:      n,
			Percentage: percentage(n, denom),
		})
		counted = append(counted, float64(n))
	}

	chart := UniversityChart{
		Rows:         rows,
		ShouldRender: len(universities) >= opts.MinSelected,
		Summary:      summarize(counted, matched),
	}
	if !chart.ShouldRender {
		chart.Caption = UniversityCaption
	}
	return chart
}

// ValueCounts counts each non-null value of a field over the whole table.
// Filters never apply. Rows are sorted by count descending; ties keep the
// order in which the values first appear.
func ValueCounts(t *core.Table, f core.Field) FrequencyTable {
	counts := map[string]int{}
	order := make([]string, 0)
	for i := 0; i < t.Len(); i++ {
		v := t.At(i).Value(f)
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	rows := make([]FrequencyRow, 0, len(order))
	for _, v := range order {
		rows = append(rows, FrequencyRow{Category: v, Count: counts[v]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return FrequencyTable{Field: f, Rows: rows}
}

// Render computes the full view model for one selection.
func Render(t *core.Table, sel core.Selection, opts Options) View {
	return View{
		RecordCount: t.Len(),
		Options: FilterOptions{
			Years:        t.Unique(core.FieldBatch),
			Courses:      t.Unique(core.FieldCourse),
			Universities: t.Unique(core.FieldUniversity),
		},
		Selection:       sel,
		Courses:         CourseByYear(t, sel, opts),
		Universities:    ByUniversity(t, sel, opts),
		TopCourses:      ValueCounts(t, core.FieldCourse).Top(opts.TopCourses),
		TopUniversities: ValueCounts(t, core.FieldUniversity).Top(opts.TopUniversities),
	}
}

func contains(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}

func denominator(basis PercentBasis, tableLen, matched int) int {
	if basis == BasisFiltered {
		return matched
	}
	return tableLen
}

// percentage returns n/denom*100, or 0 when there is nothing to divide by.
func percentage(n, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(n) / float64(denom) * 100
}

func courseCounts(rows []GroupedCount) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		out = append(out, float64(r.Count))
	}
	return out
}
