package google

import (
	"fmt"

	"alumni/internal/core"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// records. The first row is the header; it must name Batch, Course and
// University in any order.
func parseValues(values [][]interface{}) ([]core.AlumniRecord, error) {
	if len(values) == 0 {
		return nil, core.ErrEmptyHeader
	}
	schema, err := core.NewSchema(toStrings(values[0]))
	if err != nil {
		return nil, err
	}

	records := make([]core.AlumniRecord, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := toStrings(raw)
		if core.IsBlank(row) {
			continue
		}
		records = append(records, schema.Record(row))
	}
	return records, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}
