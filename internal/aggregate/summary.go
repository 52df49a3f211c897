package aggregate

import (
	"math"

	"github.com/montanaflynn/stats"
)

// summarize describes a chart's bar heights. An empty chart has a zero
// summary; stats reports ErrEmptyInput for it which is not a failure here.
func summarize(counts []float64, matched int) Summary {
	s := Summary{Matched: matched, Groups: len(counts)}
	if len(counts) == 0 {
		return s
	}
	if mean, err := stats.Mean(counts); err == nil {
		s.Mean = math.Round(mean*100) / 100
	}
	if max, err := stats.Max(counts); err == nil {
		s.Max = max
	}
	return s
}
