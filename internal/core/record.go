package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Field selects one of the categorical columns of an alumni record.
type Field int

const (
	FieldBatch Field = iota
	FieldCourse
	FieldUniversity
)

// Column returns the header name the field is loaded from.
func (f Field) Column() string {
	switch f {
	case FieldBatch:
		return "Batch"
	case FieldCourse:
		return "Course"
	case FieldUniversity:
		return "University"
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (f Field) String() string {
	return f.Column()
}

// Fields lists the required columns in header order.
func Fields() []Field {
	return []Field{FieldBatch, FieldCourse, FieldUniversity}
}

type (
	// AlumniRecord is one row of the source table. Batch is a graduation year
	// kept as a category; an empty value stands for a missing cell.
	AlumniRecord struct {
		Batch      string `json:"batch" yaml:"batch" db:"batch"`
		Course     string `json:"course" yaml:"course" db:"course"`
		University string `json:"university" yaml:"university" db:"university"`
	}
)

var (
	ErrEmptyHeader   = errors.New("empty header row")
	ErrMissingColumn = errors.New("missing required column")
)

// Value returns the record's value for the given field.
func (r AlumniRecord) Value(f Field) string {
	switch f {
	case FieldBatch:
		return r.Batch
	case FieldCourse:
		return r.Course
	case FieldUniversity:
		return r.University
	default:
		return ""
	}
}

// NewRecord builds a record from raw cell values, trimming whitespace and
// normalizing the batch.
func NewRecord(batch, course, university string) AlumniRecord {
	return AlumniRecord{
		Batch:      NormalizeBatch(batch),
		Course:     strings.TrimSpace(course),
		University: strings.TrimSpace(university),
	}
}

// NormalizeBatch trims the value and turns integral floats such as "2020.0"
// (what spreadsheets export for year columns with gaps) into "2020".
func NormalizeBatch(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := strconv.Atoi(s); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		if strings.EqualFold(s, "nan") {
			return ""
		}
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// CompareBatch orders batches numerically when both parse as integers and
// lexically otherwise. Numeric batches sort before non-numeric ones.
func CompareBatch(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
