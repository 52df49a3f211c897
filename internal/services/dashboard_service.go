package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"alumni/internal/aggregate"
	"alumni/internal/cache"
	"alumni/internal/core"
	"alumni/internal/log"
	"alumni/internal/sources"
)

// DashboardService serves dashboard views for one loaded table. Views are
// cached per selection and concurrent misses for the same selection are
// computed once.
type DashboardService struct {
	table  *core.Table
	opts   aggregate.Options
	views  cache.Cache[aggregate.View]
	group  singleflight.Group
	logger *log.Logger
	origin string

	loadedAt time.Time
	renders  atomic.Uint64
}

// Stats is reported by the metrics endpoint
type Stats struct {
	Records  int         `json:"records"`
	Renders  uint64      `json:"renders"`
	Cache    cache.Stats `json:"cache"`
	Origin   string      `json:"origin"`
	LoadedAt time.Time   `json:"loaded_at"`
}

// NewDashboardService wires a table to a view cache. origin names where the
// table came from and is only used for reporting.
func NewDashboardService(table *core.Table, opts aggregate.Options, views cache.Cache[aggregate.View], origin string, logger *log.Logger) (*DashboardService, error) {
	if table == nil {
		return nil, fmt.Errorf("table is nil")
	}
	if views == nil {
		return nil, fmt.Errorf("view cache is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		table:    table,
		opts:     opts,
		views:    views,
		logger:   logger.WithComponent(log.ComponentDashboard),
		origin:   origin,
		loadedAt: time.Now(),
	}, nil
}

// View returns the rendered view for sel. The returned value may be shared
// with other callers and must not be modified.
func (s *DashboardService) View(ctx context.Context, sel core.Selection) (aggregate.View, error) {
	if err := ctx.Err(); err != nil {
		return aggregate.View{}, err
	}

	key := sel.Key()
	if v, ok := s.views.Get(key); ok {
		return v, nil
	}

	res, err, shared := s.group.Do(key, func() (interface{}, error) {
		if v, ok := s.views.Get(key); ok {
			return v, nil
		}
		start := time.Now()
		v := aggregate.Render(s.table, sel, s.opts)
		s.renders.Add(1)
		s.views.Set(key, v)

		fields := log.NewFields().
			WithOperation(log.OpAggregate).
			WithSelection(sel.Years, sel.Courses, sel.Universities)
		s.logger.DebugContext(ctx, "View rendered", append(fields.ToSlice(),
			log.FieldGroups, len(v.Courses.Rows)+len(v.Universities.Rows),
			log.FieldDuration, time.Since(start).Milliseconds())...)
		return v, nil
	})
	if err != nil {
		return aggregate.View{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "View request coalesced", "key", key)
	}
	return res.(aggregate.View), nil
}

// FilterOptions returns the selector values without rendering charts
func (s *DashboardService) FilterOptions() aggregate.FilterOptions {
	return aggregate.FilterOptions{
		Years:        s.table.Unique(core.FieldBatch),
		Courses:      s.table.Unique(core.FieldCourse),
		Universities: s.table.Unique(core.FieldUniversity),
	}
}

// Options returns the aggregation options in use
func (s *DashboardService) Options() aggregate.Options {
	return s.opts
}

// Stats returns counters for the metrics endpoint
func (s *DashboardService) Stats() Stats {
	return Stats{
		Records:  s.table.Len(),
		Renders:  s.renders.Load(),
		Cache:    s.views.Stats(),
		Origin:   s.origin,
		LoadedAt: s.loadedAt,
	}
}

// LoadTable reads every record from r once and freezes them into a Table
func LoadTable(ctx context.Context, r sources.RecordReader, logger *log.Logger) (*core.Table, error) {
	if logger == nil {
		logger = log.Discard()
	}
	start := time.Now()
	origin := sources.Describe(r)

	records, err := r.ReadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records from %s: %w", origin, err)
	}

	table := core.NewTable(records)
	logger.WithComponent(log.ComponentSource).InfoContext(ctx, "Alumni table loaded",
		log.FieldSource, origin,
		log.FieldRecords, table.Len(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return table, nil
}
