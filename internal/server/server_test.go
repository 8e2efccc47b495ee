package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/observability"
	"github.com/matzehuels/floorcad/pkg/pipeline"
	"github.com/matzehuels/floorcad/pkg/storage"
)

const kitchenPlan = `{
  "floor_plan": {
    "rooms": [
      {
        "name": "Kitchen",
        "width": 150,
        "height": 150,
        "position": {"x": 300, "y": 0},
        "doors": [{"position": "left", "width": 50}],
        "windows": [{"position": "top", "width": 40}]
      }
    ],
    "dimensions": {"total_area": 22500, "unit": "sq_ft"}
  }
}`

func newTestServer(t *testing.T, store storage.Store, cfg Config) *Server {
	t.Helper()
	s, err := New(cfg, pipeline.NewRunner(nil, nil, store, nil), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return e
}

func TestCompileAndDownload(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestServer(t, store, Config{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/drawings?id=kitchen-1", kitchenPlan)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp compileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" || resp.ID != "kitchen-1" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Message != "Floor plan generated successfully" {
		t.Errorf("Message = %q", resp.Message)
	}
	if len(resp.Data.Rooms) != 1 || resp.Data.Rooms[0].Name != "Kitchen" {
		t.Errorf("Data = %+v", resp.Data)
	}
	if resp.Stats.Entities != 4 {
		t.Errorf("Stats.Entities = %d, want 4", resp.Stats.Entities)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/api/drawings/kitchen-1/download", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="floor_plan_kitchen-1.dxf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/dxf" {
		t.Errorf("Content-Type = %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "  0\nSECTION\n") || !strings.HasSuffix(body, "  0\nEOF\n") {
		t.Error("download is not a DXF file")
	}

	stored, err := store.Get(context.Background(), "kitchen-1", "dxf")
	if err != nil || !bytes.Equal(stored.Data, rec.Body.Bytes()) {
		t.Errorf("download differs from stored artifact (err %v)", err)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/api/drawings/kitchen-1/download?format=json", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("json download status = %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestCompileGeneratesID(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/drawings", kitchenPlan)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp compileResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ID == "" {
		t.Fatal("server did not generate an id")
	}
	if rec := do(t, s.Handler(), http.MethodGet, "/api/drawings/"+resp.ID+"/download", ""); rec.Code != http.StatusOK {
		t.Errorf("download of generated id status = %d", rec.Code)
	}
}

func TestGetDrawing(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{Options: pipeline.Options{Formats: []string{"svg"}}})
	do(t, s.Handler(), http.MethodPost, "/api/drawings?id=p1", kitchenPlan)

	rec := do(t, s.Handler(), http.MethodGet, "/api/drawings/p1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp drawingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// dxf is always stored alongside the configured formats
	if strings.Join(resp.Formats, ",") != "dxf,svg" {
		t.Errorf("Formats = %v, want [dxf svg]", resp.Formats)
	}
	if resp.Links["svg"] != "/api/drawings/p1/download?format=svg" {
		t.Errorf("Links = %v", resp.Links)
	}

	if rec := do(t, s.Handler(), http.MethodGet, "/api/drawings/absent", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown drawing status = %d, want 404", rec.Code)
	}
}

func TestCompileErrors(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{})
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   errors.Code
		field  string
	}{
		{"invalid json", "/api/drawings", `{"rooms": [`, 422, errors.ErrCodeMalformedDocument, ""},
		{"missing width", "/api/drawings", `{"rooms": [{"name": "A", "height": 1, "position": {"x": 0, "y": 0}}]}`, 422, errors.ErrCodeMalformedDocument, "rooms[0].width"},
		{"zero opening", "/api/drawings", `{"rooms": [{"name": "A", "width": 1, "height": 1, "position": {"x": 0, "y": 0}, "doors": [{"position": "left", "width": 0}]}]}`, 422, errors.ErrCodeInvalidGeometry, "rooms[0].doors[0].width"},
		{"bad id", "/api/drawings?id=../etc", kitchenPlan, 400, errors.ErrCodeInvalidID, ""},
		{"bad refresh", "/api/drawings?refresh=garbage", kitchenPlan, 400, errors.ErrCodeInvalidInput, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			e := decodeError(t, rec)
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
			if tt.field != "" && e.Field != tt.field {
				t.Errorf("field = %q, want %q", e.Field, tt.field)
			}
			if e.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestDownloadErrors(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{})
	tests := []struct {
		target string
		status int
	}{
		{"/api/drawings/missing/download", http.StatusNotFound},
		{"/api/drawings/x/download?format=PDF", http.StatusBadRequest},
		{"/api/drawings/a..b/download", http.StatusBadRequest},
		{"/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := do(t, s.Handler(), http.MethodGet, tt.target, ""); rec.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, tt.status)
		}
	}
}

type brokenStore struct {
	*storage.MemoryStore
}

func (brokenStore) Put(context.Context, *storage.Artifact) error {
	return errors.Wrap(errors.ErrCodeSinkFailure, stderrors.New("disk full"), "write artifact")
}

func TestCompileStoreFailure(t *testing.T) {
	s := newTestServer(t, brokenStore{storage.NewMemoryStore()}, Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/drawings?id=k", kitchenPlan)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != errors.ErrCodeSinkFailure {
		t.Errorf("code = %s, want SINK_FAILURE", e.Code)
	}
}

// jsonFailingStore stores dxf artifacts and rejects json ones.
type jsonFailingStore struct {
	*storage.MemoryStore
}

func (s jsonFailingStore) Put(ctx context.Context, a *storage.Artifact) error {
	if a.Format == pipeline.FormatJSON {
		return stderrors.New("disk full")
	}
	return s.MemoryStore.Put(ctx, a)
}

func TestCompileStoreFailureLeavesNothing(t *testing.T) {
	s := newTestServer(t, jsonFailingStore{storage.NewMemoryStore()}, Config{})
	h := s.Handler()

	if rec := do(t, h, http.MethodPost, "/api/drawings?id=p1", kitchenPlan); rec.Code != http.StatusBadGateway {
		t.Fatalf("compile status = %d, want 502", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/drawings/p1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/drawings/p1/download", ""); rec.Code != http.StatusNotFound {
		t.Errorf("download status = %d, want 404", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/drawings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Allow-Origin %q", got)
	}
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("wildcard origin list did not allow the request")
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q with a wildcard origin, want none", got)
	}
}

func TestCORSDisabledWithoutOrigins(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q with no configured origins, want none", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryStore(), Config{})
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	routes   []string
	statuses []int
	panics   int
}

func (h *httpRecorder) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.statuses = append(h.statuses, status)
}

func (h *httpRecorder) OnPanic(context.Context, string, string, any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics++
}

func TestHTTPHooks(t *testing.T) {
	hooks := &httpRecorder{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t, storage.NewMemoryStore(), Config{})
	do(t, s.Handler(), http.MethodGet, "/api/drawings/missing/download", "")

	if len(hooks.routes) != 1 || hooks.routes[0] != "/api/drawings/{id}/download" {
		t.Errorf("routes = %v", hooks.routes)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusNotFound {
		t.Errorf("statuses = %v", hooks.statuses)
	}

	h := s.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panic status = %d, want 500", rec.Code)
	}
	if hooks.panics != 1 {
		t.Errorf("OnPanic calls = %d, want 1", hooks.panics)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Config{}, pipeline.NewRunner(nil, nil, nil, nil), nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New() without store error = %v, want INVALID_CONFIG", err)
	}
	if _, err := New(Config{Options: pipeline.Options{Formats: []string{"pdf"}}}, pipeline.NewRunner(nil, nil, storage.NewMemoryStore(), nil), nil); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("New() with bad format error = %v, want INVALID_FORMAT", err)
	}
}
