package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alumni/internal/aggregate"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerChartRendered("courses", aggregate.Summary{Matched: 8, Groups: 4}, true).
		PushURL("/?years=2020").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	var decoded map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(trigger), &decoded); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	ev := decoded["chart:rendered"]
	if ev["chart"] != "courses" || ev["matched"] != float64(8) || ev["should_render"] != true {
		t.Errorf("unexpected trigger payload: %v", ev)
	}
	if got := w.Header().Get("HX-Push-Url"); got != "/?years=2020" {
		t.Errorf("HX-Push-Url = %q", got)
	}
}

func TestHTMXResponseBuilder_BodyTemplate(t *testing.T) {
	tmpl := template.Must(template.New("x").Parse(`{{define "hello"}}<p>{{.}}</p>{{end}}`))

	b := NewHTMXResponse()
	if err := b.BodyTemplate(tmpl, "hello", "<UST>"); err != nil {
		t.Fatalf("BodyTemplate: %v", err)
	}
	w := httptest.NewRecorder()
	b.Write(w)

	if w.Body.String() != "<p>&lt;UST&gt;</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	if err := NewHTMXResponse().BodyTemplate(tmpl, "missing", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestHTMXResponseBuilder_BodyJSON(t *testing.T) {
	b := NewHTMXResponse()
	if err := b.BodyJSON(map[string]int{"records": 10}); err != nil {
		t.Fatalf("BodyJSON: %v", err)
	}
	w := httptest.NewRecorder()
	b.Write(w)

	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(w.Body.String()) != `{"records":10}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"internal", InternalServerError("<boom>"), http.StatusInternalServerError},
		{"not found", NotFoundError("nope"), http.StatusNotFound},
		{"unavailable", ServiceUnavailableError("later"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("code = %d, want %d", w.Code, tt.code)
			}
			if strings.Contains(w.Body.String(), "<boom>") {
				t.Error("message not escaped")
			}
		})
	}

	w := httptest.NewRecorder()
	MethodNotAllowedError("GET").Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET" {
		t.Errorf("unexpected 405 response: %d %q", w.Code, w.Header().Get("Allow"))
	}
}
