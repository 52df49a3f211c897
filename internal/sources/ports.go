package sources

import (
	"context"

	"alumni/internal/core"
)

// Ports for inbound record adapters.
type (
	// RecordReader loads the full alumni table from its source. It is called
	// once at startup; the result is never written back.
	RecordReader interface {
		ReadRecords(ctx context.Context) ([]core.AlumniRecord, error)
	}

	// Describer is implemented by readers that can name their origin for logs
	// and the readiness endpoint.
	Describer interface {
		Describe() string
	}
)

// Describe returns a human readable origin for r, or "unknown".
func Describe(r RecordReader) string {
	if d, ok := r.(Describer); ok {
		return d.Describe()
	}
	return "unknown"
}
