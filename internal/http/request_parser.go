// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing the dashboard filter selection
// from request query strings.

package http

import (
	"net/url"
	"strings"

	"alumni/internal/aggregate"
	"alumni/internal/core"
)

const (
	ParamYears        = "years"
	ParamCourses      = "courses"
	ParamUniversities = "universities"

	maxValuesPerParam = 256
	maxValueLen       = 200
)

// ParseSelection reads the three filter sets from query. Repeated
// parameters (?years=2020&years=2021) are taken literally, one value each. A
// parameter given once may also be comma separated (?years=2020,2021) unless
// its whole value is one of the known options for that filter. Values are
// sanitized, empty items dropped and the result normalized with
// core.NewSelection.
func ParseSelection(query url.Values, known aggregate.FilterOptions) core.Selection {
	return core.NewSelection(
		parseList(query, ParamYears, known.Years),
		parseList(query, ParamCourses, known.Courses),
		parseList(query, ParamUniversities, known.Universities),
	)
}

// EncodeSelection is the inverse of ParseSelection. A lone value containing
// a comma is written twice so it reads back as one literal value.
func EncodeSelection(sel core.Selection) url.Values {
	q := url.Values{}
	addList(q, ParamYears, sel.Years)
	addList(q, ParamCourses, sel.Courses)
	addList(q, ParamUniversities, sel.Universities)
	return q
}

func addList(q url.Values, key string, values []string) {
	for _, v := range values {
		q.Add(key, v)
	}
	if len(values) == 1 && strings.Contains(values[0], ",") {
		q.Add(key, values[0])
	}
}

func parseList(query url.Values, key string, known []string) []string {
	raw := make([]string, 0, len(query[key]))
	for _, v := range query[key] {
		raw = append(raw, sanitizeInput(v))
	}

	var out []string
	for _, part := range core.ExpandList(raw, known) {
		v := strings.TrimSpace(part)
		if v == "" || len(v) > maxValueLen {
			continue
		}
		out = append(out, v)
		if len(out) >= maxValuesPerParam {
			return out
		}
	}
	return out
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
