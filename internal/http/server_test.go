package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"alumni/internal/aggregate"
	"alumni/internal/cache"
	"alumni/internal/core"
	"alumni/internal/services"
)

func rec(batch, course, university string) core.AlumniRecord {
	return core.AlumniRecord{Batch: batch, Course: course, University: university}
}

func tenRowTable() *core.Table {
	return core.NewTable([]core.AlumniRecord{
		rec("2020", "BSIT", "UST"),
		rec("2020", "BSIT", "UP"),
		rec("2020", "BSIT", "UST"),
		rec("2020", "BSIT", "DLSU"),
		rec("2021", "BSIT", "UP"),
		rec("2021", "BSIT", "ADMU"),
		rec("2020", "BSN", "UST"),
		rec("2021", "BSCS", "UP"),
		rec("2019", "BSA", "DLSU"),
		rec("2019", "BSIT", "UST"),
	})
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	svc, err := services.NewDashboardService(tenRowTable(), aggregate.DefaultOptions(),
		cache.NewLRUCache[aggregate.View](16, time.Minute), "memory", nil)
	require.NoError(t, err)

	srv, err := NewServer(":0", svc, opts)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/?years=2020&courses=BSIT,BSN&universities=UST", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	for _, want := range []string{
		"HCPSMSHS Alumni Dashboard",
		"Number of Alumni by Course",
		"Number of Alumni by University",
		aggregate.CourseCaption,
		aggregate.UniversityCaption,
		"Top 5 Selected Courses",
		"Top 3 Selected University",
		`<option value="2020" selected>2020</option>`,
		`<option value="2021">2021</option>`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "Comparison Graph for Courses taken by our alumni")

	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestDashboardPageRendersChartsWhenEnoughSelected(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/?years=2020,2021&courses=BSIT,BSN,BSCS&universities=UST,UP,ADMU", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Comparison Graph for Courses taken by our alumni")
	assert.Contains(t, body, "40.00%")
	assert.Contains(t, body, "20.00%")
	assert.Contains(t, body, "30.00%")
	assert.NotContains(t, body, aggregate.CourseCaption)
	assert.NotContains(t, body, aggregate.UniversityCaption)
}

func TestCourseChartPartial(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/ui/courses?years=2020&years=2021&courses=BSIT&courses=BSN&courses=BSCS",
		map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Comparison Graph for Courses taken by our alumni")
	assert.Contains(t, body, "BSIT")
	assert.Contains(t, body, "width: 100.00%")
	assert.Contains(t, body, "8 alumni in 4 groups")

	assert.Equal(t, "/?courses=BSIT&courses=BSN&courses=BSCS&years=2020&years=2021", rr.Header().Get("HX-Push-Url"))
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"chart":"courses"`)
}

func TestCourseChartPartialGuarded(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/ui/courses?years=2020&courses=BSIT,BSN", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), aggregate.CourseCaption)
	assert.Empty(t, rr.Header().Get("HX-Push-Url"))
}

func TestUniversityChartPartial(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/ui/universities?years=2020,2021&universities=UST,UP,ADMU", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "ADMU")
	assert.Contains(t, body, "10.00%")
	assert.Contains(t, body, "7 alumni in 3 universities")
}

func TestTopPartials(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/ui/top-courses?years=1999", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Top 5 Selected Courses")
	assert.Contains(t, body, "<th>Course</th><th>Count</th>")
	assert.Less(t, strings.Index(body, "BSIT"), strings.Index(body, "BSN"))

	rr = do(t, srv, http.MethodGet, "/ui/top-universities", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = rr.Body.String()
	assert.Contains(t, body, "Top 3 Selected University")
	assert.Contains(t, body, "<th>University</th><th>Count</th>")
	assert.NotContains(t, body, "ADMU", "ADMU is fourth and falls outside the top 3")
}

func TestAPIView(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/view?years=2020,2021&courses=BSIT,BSN,BSCS", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got aggregate.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

	sel := core.NewSelection([]string{"2020", "2021"}, []string{"BSIT", "BSN", "BSCS"}, nil)
	want := aggregate.Render(tenRowTable(), sel, aggregate.DefaultOptions())
	if diff := cmp.Diff(want.Courses, got.Courses); diff != "" {
		t.Fatalf("courses mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 10, got.RecordCount)
	assert.Equal(t, want.TopCourses.Rows, got.TopCourses.Rows)
}

func TestAPIViewUniversityWithComma(t *testing.T) {
	tbl := core.NewTable([]core.AlumniRecord{
		rec("2020", "BSIT", "University of the Philippines, Diliman"),
		rec("2020", "BSN", "UST"),
		rec("2020", "BSA", "DLSU"),
		rec("2021", "BSA", "UST"),
	})
	svc, err := services.NewDashboardService(tbl, aggregate.DefaultOptions(),
		cache.NewLRUCache[aggregate.View](16, time.Minute), "memory", nil)
	require.NoError(t, err)
	srv, err := NewServer(":0", svc, Options{})
	require.NoError(t, err)

	q := url.Values{
		ParamYears:        {"2020"},
		ParamUniversities: {"University of the Philippines, Diliman", "UST", "DLSU"},
	}
	rr := do(t, srv, http.MethodGet, "/api/view?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got aggregate.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []string{"University of the Philippines, Diliman", "UST", "DLSU"}, got.Selection.Universities)
	assert.True(t, got.Universities.ShouldRender)
	assert.Len(t, got.Universities.Rows, 3)

	rr = do(t, srv, http.MethodGet, "/api/view?years=2020&universities=University+of+the+Philippines%2C+Diliman", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var lone aggregate.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lone))
	assert.Equal(t, []string{"University of the Philippines, Diliman"}, lone.Selection.Universities,
		"a lone value matching a known university is not split")

	q[ParamUniversities] = []string{"University of the Philippines, Diliman", "UST"}
	rr = do(t, srv, http.MethodGet, "/ui/universities?"+q.Encode(), map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Select at least one year and two universities")

	rr = do(t, srv, http.MethodGet, "/ui/courses?"+q.Encode(), map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rr.Code)
	pushed, err := url.Parse(rr.Header().Get("HX-Push-Url"))
	require.NoError(t, err)
	assert.Equal(t, q[ParamUniversities], pushed.Query()[ParamUniversities])
}

func TestHealthReadyAndMetrics(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"records":10`)

	do(t, srv, http.MethodGet, "/api/view?years=2020", nil)
	do(t, srv, http.MethodGet, "/api/view?years=2020", nil)

	rr = do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "alumni_records 10\n")
	assert.Contains(t, body, "alumni_view_renders_total 1\n")
	assert.Contains(t, body, "alumni_view_cache_hits_total 1\n")
	assert.Contains(t, body, `alumni_http_requests_total{code="200"}`)
}

func TestReadyReportsSourceFailure(t *testing.T) {
	srv := newTestServer(t, Options{Ready: func(context.Context) error { return errors.New("db gone") }})

	rr := do(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "db gone")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodPost, "/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Allow"))
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/static/app.css", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ".bar-track")
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(":0", nil, Options{})
	require.Error(t, err)
}

func TestShutdownLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	manager := cache.NewManager(nil)
	manager.StartCleanup(10 * time.Millisecond)
	srv := newTestServer(t, Options{CacheManager: manager})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, srv.Shutdown(ctx))

	assert.ErrorIs(t, <-served, http.ErrServerClosed)
	client.CloseIdleConnections()
}
