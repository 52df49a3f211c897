package aggregate

import (
	"fmt"

	"alumni/internal/core"
)

// PercentBasis chooses the denominator used for bar percentages.
type PercentBasis string

const (
	// BasisTable divides by the row count of the whole unfiltered table.
	// This matches the dashboard's historical numbers and is the default.
	BasisTable PercentBasis = "table"
	// BasisFiltered divides by the size of the filtered subset of a chart.
	BasisFiltered PercentBasis = "filtered"
)

// IsValid returns true if the basis is known
func (b PercentBasis) IsValid() bool {
	return b == BasisTable || b == BasisFiltered
}

const (
	CourseCaption     = "Note: Select at least one year and two courses to show the graph."
	UniversityCaption = "Note: Select at least one year and two universities to show the graph."
)

// Options tunes the view computation.
type Options struct {
	Basis PercentBasis
	// MinSelected is the number of distinct courses (or universities) that
	// must be selected before a breakdown chart is shown.
	MinSelected     int
	TopCourses      int
	TopUniversities int
}

// DefaultOptions mirrors the original dashboard.
func DefaultOptions() Options {
	return Options{
		Basis:           BasisTable,
		MinSelected:     3,
		TopCourses:      5,
		TopUniversities: 3,
	}
}

// Validate checks the options for nonsensical values
func (o Options) Validate() error {
	if !o.Basis.IsValid() {
		return fmt.Errorf("invalid percentage basis '%s': must be one of [%s %s]", o.Basis, BasisTable, BasisFiltered)
	}
	if o.MinSelected < 0 {
		return fmt.Errorf("invalid min selected %d: must not be negative", o.MinSelected)
	}
	if o.TopCourses < 0 || o.TopUniversities < 0 {
		return fmt.Errorf("invalid top-N sizes (%d, %d): must not be negative", o.TopCourses, o.TopUniversities)
	}
	return nil
}

type (
	// GroupedCount is one bar of the course by year chart.
	GroupedCount struct {
		Course        string  `json:"course" yaml:"course"`
		Batch         string  `json:"batch" yaml:"batch"`
		Count         int     `json:"count" yaml:"count"`
		TotalForGroup int     `json:"count_total" yaml:"count_total"`
		Percentage    float64 `json:"percentage" yaml:"percentage"`
	}

	// UniversityCount is one bar of the university chart.
	UniversityCount struct {
		University string  `json:"university" yaml:"university"`
		Count      int     `json:"count" yaml:"count"`
		Percentage float64 `json:"percentage" yaml:"percentage"`
	}

	// FrequencyRow is one category and how often it occurs.
	FrequencyRow struct {
		Category string `json:"category" yaml:"category"`
		Count    int    `json:"count" yaml:"count"`
	}

	// FrequencyTable is a value count over one field, most frequent first.
	FrequencyTable struct {
		Field core.Field     `json:"-" yaml:"-"`
		Rows  []FrequencyRow `json:"rows" yaml:"rows"`
	}

	// Summary describes the bars of a chart.
	Summary struct {
		Matched int     `json:"matched" yaml:"matched"`
		Groups  int     `json:"groups" yaml:"groups"`
		Mean    float64 `json:"mean" yaml:"mean"`
		Max     float64 `json:"max" yaml:"max"`
	}

	// CourseChart is the course by year breakdown plus its render gate.
	CourseChart struct {
		Rows         []GroupedCount `json:"rows" yaml:"rows"`
		ShouldRender bool           `json:"should_render" yaml:"should_render"`
		Caption      string         `json:"caption,omitempty" yaml:"caption,omitempty"`
		Summary      Summary        `json:"summary" yaml:"summary"`
	}

	// UniversityChart is the university breakdown plus its render gate.
	UniversityChart struct {
		Rows         []UniversityCount `json:"rows" yaml:"rows"`
		ShouldRender bool              `json:"should_render" yaml:"should_render"`
		Caption      string            `json:"caption,omitempty" yaml:"caption,omitempty"`
		Summary      Summary           `json:"summary" yaml:"summary"`
	}

	// FilterOptions are the values offered by the three selectors.
	FilterOptions struct {
		Years        []string `json:"years" yaml:"years"`
		Courses      []string `json:"courses" yaml:"courses"`
		Universities []string `json:"universities" yaml:"universities"`
	}

	// View is everything the presenter needs for one render pass.
	View struct {
		RecordCount     int             `json:"record_count" yaml:"record_count"`
		Options         FilterOptions   `json:"options" yaml:"options"`
		Selection       core.Selection  `json:"selection" yaml:"selection"`
		Courses         CourseChart     `json:"courses" yaml:"courses"`
		Universities    UniversityChart `json:"universities" yaml:"universities"`
		TopCourses      FrequencyTable  `json:"top_courses" yaml:"top_courses"`
		TopUniversities FrequencyTable  `json:"top_universities" yaml:"top_universities"`
	}
)

// Columns returns the column names of the table: the field name and "Count".
func (t FrequencyTable) Columns() [2]string {
	return [2]string{t.Field.Column(), "Count"}
}

// Top returns the first n rows. n larger than the table returns all rows.
func (t FrequencyTable) Top(n int) FrequencyTable {
	if n <= 0 {
		return FrequencyTable{Field: t.Field, Rows: []FrequencyRow{}}
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	rows := make([]FrequencyRow, n)
	copy(rows, t.Rows[:n])
	return FrequencyTable{Field: t.Field, Rows: rows}
}
