package core

import (
	"sort"
	"strings"
)

// Selection holds the values picked in the three dashboard filters. Any of
// the sets may be empty, in which case it matches no rows.
type Selection struct {
	Years        []string `json:"years" yaml:"years"`
	Courses      []string `json:"courses" yaml:"courses"`
	Universities []string `json:"universities" yaml:"universities"`
}

// NewSelection builds a normalized selection: values are trimmed, blanks
// dropped, duplicates removed and input order preserved.
func NewSelection(years, courses, universities []string) Selection {
	normYears := make([]string, 0, len(years))
	for _, y := range years {
		normYears = append(normYears, NormalizeBatch(y))
	}
	return Selection{
		Years:        dedupe(normYears),
		Courses:      dedupe(courses),
		Universities: dedupe(universities),
	}
}

// Set returns the selected values for a field as a lookup set.
func (s Selection) Set(f Field) map[string]struct{} {
	var values []string
	switch f {
	case FieldBatch:
		values = s.Years
	case FieldCourse:
		values = s.Courses
	case FieldUniversity:
		values = s.Universities
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Key returns a canonical representation usable as a cache key. Two
// selections with the same sets produce the same key regardless of order.
func (s Selection) Key() string {
	var b strings.Builder
	for i, values := range [][]string{s.Years, s.Courses, s.Universities} {
		if i > 0 {
			b.WriteByte('|')
		}
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		for j, v := range sorted {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(keyEscaper.Replace(v))
		}
	}
	return b.String()
}

// ExpandList turns the raw values of one filter into its items. Every value
// is taken literally, except that a lone value which is not one of known is
// read as a comma separated list, so "2020,2021" works as a shorthand while a
// category such as "University of the Philippines, Diliman" stays whole.
func ExpandList(raw, known []string) []string {
	if len(raw) != 1 || !strings.Contains(raw[0], ",") {
		return raw
	}
	v := strings.TrimSpace(raw[0])
	for _, k := range known {
		if k == v {
			return raw
		}
	}
	return strings.Split(raw[0], ",")
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, "|", `\|`)

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
