package core

import (
	"fmt"
	"strings"
)

// Schema maps the required fields to column positions of a header row.
// It is fixed once per load so rows are read by position, never by name.
type Schema struct {
	index [3]int
}

// NewSchema resolves the required columns in header. Matching ignores case
// and surrounding whitespace; extra columns are ignored.
func NewSchema(header []string) (Schema, error) {
	if len(header) == 0 {
		return Schema{}, ErrEmptyHeader
	}

	var s Schema
	var missing []string
	for _, f := range Fields() {
		s.index[f] = indexOf(header, f.Column())
		if s.index[f] == -1 {
			missing = append(missing, f.Column())
		}
	}
	if len(missing) > 0 {
		return Schema{}, fmt.Errorf("%w: %s; got headers=%v", ErrMissingColumn, strings.Join(missing, ","), header)
	}
	return s, nil
}

// Index returns the column position of a field.
func (s Schema) Index(f Field) int {
	return s.index[f]
}

// Record reads one data row. Short rows yield empty (null) values.
func (s Schema) Record(row []string) AlumniRecord {
	return NewRecord(
		safeGet(row, s.index[FieldBatch]),
		safeGet(row, s.index[FieldCourse]),
		safeGet(row, s.index[FieldUniversity]),
	)
}

// IsBlank reports whether every cell of row is empty.
func IsBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
