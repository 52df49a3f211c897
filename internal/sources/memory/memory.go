package memory

import (
	"context"

	"alumni/internal/core"
	"alumni/internal/sources"
)

// Store serves a fixed set of records. It backs tests and the demo seed.
type Store struct {
	items []core.AlumniRecord
}

var _ sources.RecordReader = (*Store)(nil)

func New(records []core.AlumniRecord) *Store {
	return &Store{items: append([]core.AlumniRecord(nil), records...)}
}

// ReadRecords returns a copy of the stored records.
func (s *Store) ReadRecords(_ context.Context) ([]core.AlumniRecord, error) {
	return append([]core.AlumniRecord(nil), s.items...), nil
}

// Describe implements sources.Describer
func (s *Store) Describe() string {
	return "memory"
}

// Demo returns a store with a small fixed sample, used when no data source
// is configured for local runs.
func Demo() *Store {
	batches := []string{"2019", "2020", "2021", "2022"}
	courses := []string{"BSIT", "BSN", "BSCS", "BSA", "BSED", "BSCE", "BSHM"}
	universities := []string{"UST", "UP Diliman", "DLSU", "ADMU", "PUP"}

	var records []core.AlumniRecord
	for i := 0; i < 120; i++ {
		records = append(records, core.AlumniRecord{
			Batch:      batches[i%len(batches)],
			Course:     courses[(i*i+i/3)%len(courses)],
			University: universities[(i/2+i%3)%len(universities)],
		})
	}
	return New(records)
}
