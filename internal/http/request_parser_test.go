package http

import (
	"net/url"
	"strings"
	"testing"

	"alumni/internal/aggregate"
	"alumni/internal/core"
)

var knownFilters = aggregate.FilterOptions{
	Years:        []string{"2020", "2021"},
	Courses:      []string{"BSIT", "BSN"},
	Universities: []string{"University of the Philippines, Diliman", "UST", "DLSU"},
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.Selection
	}{
		{
			name:  "empty query",
			query: "",
			want:  core.Selection{},
		},
		{
			name:  "repeated params",
			query: "years=2020&years=2021&courses=BSIT&courses=BSN",
			want:  core.Selection{Years: []string{"2020", "2021"}, Courses: []string{"BSIT", "BSN"}},
		},
		{
			name:  "comma separated",
			query: "years=2020,2021&universities=UST,DLSU",
			want:  core.Selection{Years: []string{"2020", "2021"}, Universities: []string{"UST", "DLSU"}},
		},
		{
			name:  "duplicated and padded",
			query: "years=2021&years=+2020+&years=2021&courses=BSIT,,",
			want:  core.Selection{Years: []string{"2021", "2020"}, Courses: []string{"BSIT"}},
		},
		{
			name:  "repeated values are never split",
			query: "courses=BSIT,BSN&courses=BSA",
			want:  core.Selection{Courses: []string{"BSIT,BSN", "BSA"}},
		},
		{
			name:  "repeated university containing a comma",
			query: "universities=University+of+the+Philippines%2C+Diliman&universities=UST&universities=DLSU",
			want:  core.Selection{Universities: []string{"University of the Philippines, Diliman", "UST", "DLSU"}},
		},
		{
			name:  "lone known university containing a comma",
			query: "universities=University+of+the+Philippines%2C+Diliman",
			want:  core.Selection{Universities: []string{"University of the Philippines, Diliman"}},
		},
		{
			name:  "float batches normalized",
			query: "years=2020.0",
			want:  core.Selection{Years: []string{"2020"}},
		},
		{
			name:  "control characters stripped",
			query: "courses=BS%00IT",
			want:  core.Selection{Courses: []string{"BSIT"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad query: %v", err)
			}
			got := ParseSelection(q, knownFilters)
			if got.Key() != tt.want.Key() {
				t.Errorf("ParseSelection(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseSelectionCommaUniversityGuard(t *testing.T) {
	tbl := core.NewTable([]core.AlumniRecord{
		{Batch: "2020", Course: "BSIT", University: "University of the Philippines, Diliman"},
		{Batch: "2020", Course: "BSN", University: "UST"},
		{Batch: "2020", Course: "BSA", University: "DLSU"},
	})
	known := aggregate.FilterOptions{
		Years:        tbl.Unique(core.FieldBatch),
		Courses:      tbl.Unique(core.FieldCourse),
		Universities: tbl.Unique(core.FieldUniversity),
	}

	q := url.Values{
		ParamYears:        {"2020"},
		ParamUniversities: {"University of the Philippines, Diliman", "UST", "DLSU"},
	}
	chart := aggregate.ByUniversity(tbl, ParseSelection(q, known), aggregate.DefaultOptions())
	if len(chart.Rows) != 3 {
		t.Fatalf("expected 3 university rows, got %d: %+v", len(chart.Rows), chart.Rows)
	}

	q[ParamUniversities] = []string{"University of the Philippines, Diliman", "UST"}
	sel := ParseSelection(q, known)
	if len(sel.Universities) != 2 {
		t.Fatalf("expected 2 universities, got %q", sel.Universities)
	}
	if chart := aggregate.ByUniversity(tbl, sel, aggregate.DefaultOptions()); chart.ShouldRender {
		t.Error("two selected universities must not pass the guard")
	}
}

func TestParseSelectionLimits(t *testing.T) {
	q := url.Values{}
	q.Set(ParamCourses, strings.Repeat("x", maxValueLen+1)+",BSIT")
	got := ParseSelection(q, aggregate.FilterOptions{})
	if len(got.Courses) != 1 || got.Courses[0] != "BSIT" {
		t.Errorf("oversized value should be dropped: %+v", got.Courses)
	}

	many := make([]string, maxValuesPerParam+10)
	for i := range many {
		many[i] = "c" + strings.Repeat("i", i%50) + string(rune('a'+i%26))
	}
	q = url.Values{ParamCourses: many}
	if n := len(parseList(q, ParamCourses, nil)); n != maxValuesPerParam {
		t.Errorf("parseList returned %d values, want %d", n, maxValuesPerParam)
	}
}

func TestEncodeSelectionRoundTrip(t *testing.T) {
	tests := []core.Selection{
		core.NewSelection([]string{"2020", "2021"}, []string{"BSIT"}, []string{"UP Diliman"}),
		core.NewSelection([]string{"2020"}, nil, []string{"University of the Philippines, Diliman", "UST"}),
		core.NewSelection(nil, []string{"Nursing, Accelerated"}, []string{"Unknown, Campus"}),
	}
	for _, sel := range tests {
		got := ParseSelection(EncodeSelection(sel), aggregate.FilterOptions{})
		if got.Key() != sel.Key() {
			t.Errorf("round trip = %+v, want %+v", got, sel)
		}
	}
}
