package http

import (
	"fmt"
	"html/template"
	"math"

	"alumni/internal/aggregate"
	"alumni/internal/core"
)

const seriesColors = 8

// CourseGroup is one course of the grouped course by year chart with one
// bar per batch.
type CourseGroup struct {
	Course string
	Total  int
	Bars   []aggregate.GroupedCount
}

// groupByCourse folds rows, already sorted by course, into one group per
// course.
func groupByCourse(rows []aggregate.GroupedCount) []CourseGroup {
	var groups []CourseGroup
	for _, row := range rows {
		if n := len(groups); n == 0 || groups[n-1].Course != row.Course {
			groups = append(groups, CourseGroup{Course: row.Course, Total: row.TotalForGroup})
		}
		g := &groups[len(groups)-1]
		g.Bars = append(g.Bars, row)
	}
	return groups
}

// formatPercent renders a percentage with two decimals.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// barWidth scales value against max into [0, 100].
func barWidth(value, max float64) float64 {
	if max <= 0 || value <= 0 {
		return 0
	}
	w := value / max * 100
	return math.Min(100, math.Round(w*100)/100)
}

// barStyle is the inline width of a bar, value relative to the chart max.
func barStyle(value, max int) template.CSS {
	return template.CSS(fmt.Sprintf("width: %.2f%%", barWidth(float64(value), float64(max))))
}

// seriesClass picks a stable color class for a batch from its position in
// the selected years.
func seriesClass(years []string, batch string) string {
	for i, y := range years {
		if y == batch {
			return fmt.Sprintf("series-%d", i%seriesColors)
		}
	}
	return "series-0"
}

func maxCount[T any](rows []T, count func(T) int) int {
	m := 0
	for _, r := range rows {
		if c := count(r); c > m {
			m = c
		}
	}
	return m
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// selectionQuery encodes sel for links and hx-push-url.
func selectionQuery(sel core.Selection) string {
	if q := EncodeSelection(sel).Encode(); q != "" {
		return "?" + q
	}
	return ""
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatPercent": formatPercent,
		"barStyle":      barStyle,
		"seriesClass":   seriesClass,
		"selected":      contains,
		"groupByCourse": groupByCourse,
		"courseMax": func(rows []aggregate.GroupedCount) int {
			return maxCount(rows, func(r aggregate.GroupedCount) int { return r.Count })
		},
		"universityMax": func(rows []aggregate.UniversityCount) int {
			return maxCount(rows, func(r aggregate.UniversityCount) int { return r.Count })
		},
		"frequencyMax": func(rows []aggregate.FrequencyRow) int {
			return maxCount(rows, func(r aggregate.FrequencyRow) int { return r.Count })
		},
	}
}
