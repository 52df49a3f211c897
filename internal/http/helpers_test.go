package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alumni/internal/aggregate"
	"alumni/internal/core"
)

func TestGroupByCourse(t *testing.T) {
	rows := []aggregate.GroupedCount{
		{Course: "BSCS", Batch: "2021", Count: 1, TotalForGroup: 1},
		{Course: "BSIT", Batch: "2020", Count: 4, TotalForGroup: 6},
		{Course: "BSIT", Batch: "2021", Count: 2, TotalForGroup: 6},
	}
	groups := groupByCourse(rows)
	if assert.Len(t, groups, 2) {
		assert.Equal(t, "BSCS", groups[0].Course)
		assert.Equal(t, 6, groups[1].Total)
		assert.Len(t, groups[1].Bars, 2)
	}
	assert.Empty(t, groupByCourse(nil))
}

func TestBarHelpers(t *testing.T) {
	assert.Equal(t, "40.00%", formatPercent(40))
	assert.Equal(t, "33.33%", formatPercent(100.0/3))

	assert.Equal(t, 50.0, barWidth(2, 4))
	assert.Equal(t, 0.0, barWidth(2, 0))
	assert.Equal(t, 100.0, barWidth(5, 4))
	assert.Equal(t, "width: 25.00%", string(barStyle(1, 4)))
}

func TestSeriesClass(t *testing.T) {
	years := []string{"2020", "2021"}
	assert.Equal(t, "series-0", seriesClass(years, "2020"))
	assert.Equal(t, "series-1", seriesClass(years, "2021"))
	assert.Equal(t, "series-0", seriesClass(years, "1999"))
}

func TestSelectionQuery(t *testing.T) {
	assert.Equal(t, "", selectionQuery(core.Selection{}))
	assert.Equal(t, "?courses=BSIT&years=2020",
		selectionQuery(core.NewSelection([]string{"2020"}, []string{"BSIT"}, nil)))
}
