package core

// Table is the loaded record set. It is immutable after construction and
// safe to share between goroutines without locking.
type Table struct {
	records []AlumniRecord
}

// NewTable copies records into a new table.
func NewTable(records []AlumniRecord) *Table {
	return &Table{records: append([]AlumniRecord(nil), records...)}
}

// Len returns the number of rows, nulls included.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the i-th record.
func (t *Table) At(i int) AlumniRecord {
	return t.records[i]
}

// Records returns a copy of all rows.
func (t *Table) Records() []AlumniRecord {
	if t == nil {
		return nil
	}
	return append([]AlumniRecord(nil), t.records...)
}

// Unique returns the distinct non-null values of a field in order of first
// appearance.
func (t *Table) Unique(f Field) []string {
	if t == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, r := range t.records {
		v := r.Value(f)
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
