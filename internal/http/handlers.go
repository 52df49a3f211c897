package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"alumni/internal/aggregate"
	"alumni/internal/core"
	"alumni/internal/log"
)

type pageData struct {
	Title           string
	View            aggregate.View
	Query           string
	CourseChart     courseChartData
	UniversityChart universityChartData
	TopCourses      frequencyData
	TopUniversities frequencyData
}

type courseChartData struct {
	Chart aggregate.CourseChart
	Years []string
}

type universityChartData struct {
	Chart aggregate.UniversityChart
}

type frequencyData struct {
	ID       string
	Question string
	Title    string
	Columns  [2]string
	Table    aggregate.FrequencyTable
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// selection parses the filters in the request query against the table's
// known values.
func (s *Server) selection(r *http.Request) core.Selection {
	return ParseSelection(r.URL.Query(), s.filters)
}

// view computes the view for the request's selection, writing an error
// response and returning false on failure.
func (s *Server) view(w http.ResponseWriter, r *http.Request, sel core.Selection) (aggregate.View, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	v, err := s.svc.View(ctx, sel)
	if err != nil {
		log.FromContextOr(r.Context(), s.logger).Failure(ctx, "View computation failed", log.OpAggregate, err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			ServiceUnavailableError("the dashboard is busy, try again").Write(w)
		} else {
			InternalServerError("could not compute the dashboard").Write(w)
		}
		return aggregate.View{}, false
	}
	return v, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data interface{}) {
	if err := b.BodyTemplate(s.templates, name, data); err != nil {
		log.FromContextOr(r.Context(), s.logger).Failure(r.Context(), "Template execution failed", log.OpRender, err, "template", name)
		InternalServerError("could not render the page").Write(w)
		return
	}
	b.Write(w)
}

// handleDashboard renders the full page for the selection in the query
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel := s.selection(r)
	v, ok := s.view(w, r, sel)
	if !ok {
		return
	}

	s.render(w, r, NewHTMXResponse(), "dashboard_page", pageData{
		Title:           "Alumni Dashboard",
		View:            v,
		Query:           selectionQuery(sel),
		CourseChart:     courseChartData{Chart: v.Courses, Years: sel.Years},
		UniversityChart: universityChartData{Chart: v.Universities},
		TopCourses:      s.topCourses(v),
		TopUniversities: s.topUniversities(v),
	})
}

// handleCourseChart returns the course by year partial
func (s *Server) handleCourseChart(w http.ResponseWriter, r *http.Request) {
	sel := s.selection(r)
	v, ok := s.view(w, r, sel)
	if !ok {
		return
	}

	b := NewHTMXResponse().TriggerChartRendered("courses", v.Courses.Summary, v.Courses.ShouldRender)
	if isHTMX(r) {
		b.PushURL("/" + selectionQuery(sel))
	}
	s.render(w, r, b, "course_chart", courseChartData{Chart: v.Courses, Years: sel.Years})
}

// handleUniversityChart returns the university partial
func (s *Server) handleUniversityChart(w http.ResponseWriter, r *http.Request) {
	sel := s.selection(r)
	v, ok := s.view(w, r, sel)
	if !ok {
		return
	}

	b := NewHTMXResponse().TriggerChartRendered("universities", v.Universities.Summary, v.Universities.ShouldRender)
	s.render(w, r, b, "university_chart", universityChartData{Chart: v.Universities})
}

// handleTopCourses returns the most common courses over the whole table
func (s *Server) handleTopCourses(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r, core.Selection{})
	if !ok {
		return
	}
	s.render(w, r, NewHTMXResponse(), "frequency_chart", s.topCourses(v))
}

// handleTopUniversities returns the most common universities over the whole table
func (s *Server) handleTopUniversities(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r, core.Selection{})
	if !ok {
		return
	}
	s.render(w, r, NewHTMXResponse(), "frequency_chart", s.topUniversities(v))
}

func (s *Server) topCourses(v aggregate.View) frequencyData {
	return frequencyData{
		ID:       "top-courses",
		Question: "What are the most common courses that alumni are taking in?",
		Title:    fmt.Sprintf("Top %d Selected Courses", s.svc.Options().TopCourses),
		Columns:  v.TopCourses.Columns(),
		Table:    v.TopCourses,
	}
}

func (s *Server) topUniversities(v aggregate.View) frequencyData {
	return frequencyData{
		ID:       "top-universities",
		Question: "What are the most common universities that alumni are going in?",
		Title:    fmt.Sprintf("Top %d Selected University", s.svc.Options().TopUniversities),
		Columns:  v.TopUniversities.Columns(),
		Table:    v.TopUniversities,
	}
}

// handleAPIView returns the full view model as JSON
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r, s.selection(r))
	if !ok {
		return
	}

	b := NewHTMXResponse().Header("Cache-Control", "no-store")
	if err := b.BodyJSON(v); err != nil {
		log.FromContextOr(r.Context(), s.logger).Failure(r.Context(), "View encoding failed", log.OpRender, err)
		InternalServerError("could not encode the view").Write(w)
		return
	}
	b.Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports 503 when the record source can no longer be reached
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.Stats()
	body := map[string]interface{}{
		"status":  "ready",
		"records": stats.Records,
		"source":  stats.Origin,
	}
	status := http.StatusOK

	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContextOr(r.Context(), s.logger).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
			body["status"] = "unavailable"
			body["error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	b := NewHTMXResponse().Status(status)
	_ = b.BodyJSON(body)
	b.Write(w)
}

// handleMetrics exposes counters in the Prometheus text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.Stats()
	traffic := s.tracer.GetMetrics()

	var sb strings.Builder
	gauge := func(name, help string, value interface{}) {
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s gauge\n%s %v\n", name, help, name, name, value)
	}
	counter := func(name, help string, value interface{}) {
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n%s %v\n", name, help, name, name, value)
	}

	gauge("alumni_records", "Rows in the loaded alumni table.", stats.Records)
	gauge("alumni_uptime_seconds", "Seconds since the server started.", int64(time.Since(s.startedAt).Seconds()))
	counter("alumni_view_renders_total", "Views computed from the table.", stats.Renders)
	counter("alumni_view_cache_hits_total", "View cache hits.", stats.Cache.Hits)
	counter("alumni_view_cache_misses_total", "View cache misses.", stats.Cache.Misses)
	counter("alumni_view_cache_evictions_total", "Views evicted for capacity.", stats.Cache.Evictions)
	counter("alumni_view_cache_expired_total", "Views dropped after their TTL.", stats.Cache.Expired)
	gauge("alumni_view_cache_entries", "Views currently cached.", stats.Cache.Size)
	gauge("alumni_http_request_duration_avg_seconds", "Mean request latency.", traffic.AverageResponseTime.Seconds())

	codes := make([]int, 0, len(traffic.ByStatus))
	for code := range traffic.ByStatus {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	sb.WriteString("# HELP alumni_http_requests_total Requests served by status code.\n# TYPE alumni_http_requests_total counter\n")
	for _, code := range codes {
		fmt.Fprintf(&sb, "alumni_http_requests_total{code=\"%d\"} %d\n", code, traffic.ByStatus[code])
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}
