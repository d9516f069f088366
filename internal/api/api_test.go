package api_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bcnelson/cicd-wizard/internal/api"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/generator"
	"github.com/bcnelson/cicd-wizard/internal/generator/gemini"
	"github.com/bcnelson/cicd-wizard/internal/prompt"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/bcnelson/cicd-wizard/internal/storage/memory"
	"github.com/bcnelson/cicd-wizard/internal/web"
)

const fixture = `files:
  - filename: .github/workflows/deploy.yml
    content: |
      name: deploy
      on: [push]
    description: Build and deploy workflow
  - filename: infra/main.bicep
    content: "param location string\n"
    description: Infrastructure template
summary: Builds once and promotes through each environment.
`

// testServer creates a test server with in-memory storage
type testServer struct {
	handler http.Handler
	shim    *generator.FileShim
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	shim := generator.NewFileShim(path)
	return &testServer{handler: newHandler(t, shim), shim: shim}
}

func newHandler(t *testing.T, gen generator.Generator) http.Handler {
	t.Helper()

	ws := service.NewWizardService(memory.New())
	gs, err := service.NewGenerationService(ws, gen, nil, 8)
	if err != nil {
		t.Fatalf("NewGenerationService: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewRouter(logger, ws, gs, web.Options{})
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	return request(ts.handler, method, path, body)
}

func request(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type sessionView struct {
	ID                 string                `json:"id"`
	Selection          domain.SelectionState `json:"selection"`
	Result             *domain.Result        `json:"result"`
	LastError          string                `json:"lastError"`
	Complete           bool                  `json:"complete"`
	Valid              bool                  `json:"valid"`
	CompatibilityError string                `json:"compatibilityError"`
	AvailableTargets   []struct {
		Value string `json:"value"`
	} `json:"availableTargetResources"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := request(h, "POST", "/api/v1/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decode[sessionView](t, rr).ID
}

func setField(t *testing.T, h http.Handler, id, key, value string) sessionView {
	t.Helper()
	rr := request(h, "PUT", "/api/v1/sessions/"+id+"/fields/"+key, domain.SetFieldRequest{Value: value})
	if rr.Code != http.StatusOK {
		t.Fatalf("set %s=%s: expected 200, got %d: %s", key, value, rr.Code, rr.Body.String())
	}
	return decode[sessionView](t, rr)
}

func completeSelection(t *testing.T, h http.Handler, id string) {
	t.Helper()
	setField(t, h, id, "cloud", "Azure")
	setField(t, h, id, "appType", "Backend")
	setField(t, h, id, "targetResource", "WebApp")
	setField(t, h, id, "devOps", "GitHubActions")
	v := setField(t, h, id, "architecture", "Single")
	if !v.Valid {
		t.Fatalf("Expected a valid selection, got %+v", v)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/health", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/api/v1/catalog", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	cat := decode[map[string]json.RawMessage](t, rr)
	for _, key := range []string{"clouds", "appTypes", "targetResources", "devOps", "architectures", "strategies"} {
		if _, ok := cat[key]; !ok {
			t.Errorf("catalog missing %q", key)
		}
	}

	rr = ts.request("GET", "/api/v1/catalog/resources?cloud=AWS", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	resources := decode[[]struct{ Value string }](t, rr)
	for _, r := range resources {
		if r.Value == "DataFactory" || r.Value == "Synapse" {
			t.Errorf("%s should not be offered on AWS", r.Value)
		}
	}

	rr = ts.request("GET", "/api/v1/catalog/resources?cloud=Mars", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown cloud, got %d", rr.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)

	rr := ts.request("GET", "/api/v1/sessions/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("ETag") == "" {
		t.Error("Expected an ETag header")
	}
	v := decode[sessionView](t, rr)
	if v.Complete || v.Valid {
		t.Error("A new session should not be complete")
	}
	if len(v.Selection.Environments) != 4 {
		t.Errorf("Expected 4 default environments, got %d", len(v.Selection.Environments))
	}

	rr = ts.request("GET", "/api/v1/sessions/does-not-exist", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	completeSelection(t, ts.handler, id)

	rr = ts.request("DELETE", "/api/v1/sessions/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if v := decode[sessionView](t, rr); v.Selection.Cloud != "" {
		t.Errorf("Expected reset selection, got cloud %q", v.Selection.Cloud)
	}
}

func TestCloudChangeClearsUnavailableTarget(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)

	setField(t, ts.handler, id, "cloud", "Azure")
	setField(t, ts.handler, id, "targetResource", "DataFactory")
	v := setField(t, ts.handler, id, "cloud", "AWS")

	if v.Selection.TargetResource != "" {
		t.Errorf("Expected target resource cleared, got %q", v.Selection.TargetResource)
	}
	for _, r := range v.AvailableTargets {
		if r.Value == "DataFactory" {
			t.Error("DataFactory should not be available on AWS")
		}
	}

	rr := ts.request("PUT", "/api/v1/sessions/"+id+"/fields/targetResource", domain.SetFieldRequest{Value: "DataFactory"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unavailable target, got %d", rr.Code)
	}

	rr = ts.request("PUT", "/api/v1/sessions/"+id+"/fields/color", domain.SetFieldRequest{Value: "blue"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown field, got %d", rr.Code)
	}
}

func TestCompatibilityErrorBlocksGenerate(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)

	setField(t, ts.handler, id, "cloud", "Azure")
	setField(t, ts.handler, id, "appType", "Frontend")
	setField(t, ts.handler, id, "targetResource", "FunctionApp")
	setField(t, ts.handler, id, "devOps", "GitHubActions")
	v := setField(t, ts.handler, id, "architecture", "Single")

	if v.CompatibilityError == "" {
		t.Fatal("Expected a compatibility error")
	}
	if !v.Complete || v.Valid {
		t.Errorf("Expected complete but invalid, got complete=%v valid=%v", v.Complete, v.Valid)
	}
	if v.Selection.TargetResource != "FunctionApp" || v.Selection.AppType != "Frontend" {
		t.Error("Compatibility check must not clear either field")
	}

	rr := ts.request("POST", "/api/v1/sessions/"+id+"/generate", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}
	if n := len(ts.shim.Requests()); n != 0 {
		t.Errorf("Expected no generator calls, got %d", n)
	}
}

func TestIncompleteSelectionRejected(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)

	rr := ts.request("POST", "/api/v1/sessions/"+id+"/generate", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rr.Code)
	}
	resp := decode[map[string]json.RawMessage](t, rr)
	if _, ok := resp["errors"]; !ok {
		t.Errorf("Expected field errors, got %s", rr.Body.String())
	}

	rr = ts.request("GET", "/api/v1/sessions/"+id+"/request", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for request preview, got %d", rr.Code)
	}
}

func TestEnvironmentEditing(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)
	base := "/api/v1/sessions/" + id + "/environments"

	rr := ts.request("POST", base+"/0/move", domain.MoveEnvironmentRequest{Direction: 1})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	envs := decode[sessionView](t, rr).Selection.Environments
	if envs[0].ID != "qa" || envs[1].ID != "dev" {
		t.Errorf("Expected [qa dev ...], got %+v", envs)
	}

	rr = ts.request("POST", base+"/0/move", domain.MoveEnvironmentRequest{Direction: -1})
	if rr.Code != http.StatusOK {
		t.Errorf("Moving past the top should be a no-op, got %d", rr.Code)
	}

	rr = ts.request("POST", base+"/0/move", domain.MoveEnvironmentRequest{Direction: 2})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad direction, got %d", rr.Code)
	}

	rr = ts.request("POST", base, domain.AddEnvironmentRequest{Name: "UAT"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	envs = decode[sessionView](t, rr).Selection.Environments
	if last := envs[len(envs)-1]; last.ID != "uat" || last.Name != "UAT" {
		t.Errorf("Expected {uat UAT}, got %+v", last)
	}

	rr = ts.request("POST", base, domain.AddEnvironmentRequest{Name: "   "})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for blank name, got %d", rr.Code)
	}

	rr = ts.request("PUT", base+"/1", domain.RenameEnvironmentRequest{Name: "Development"})
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	rr = ts.request("DELETE", base+"/42", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	rr = ts.request("DELETE", base+"/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	rr = ts.request("DELETE", base+"/0", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if n := len(decode[sessionView](t, rr).Selection.Environments); n != 4 {
		t.Errorf("Expected 4 environments, got %d", n)
	}
}

func TestAdvancedOptions(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)
	path := "/api/v1/sessions/" + id + "/advanced"

	rr := ts.request("PUT", path, domain.AdvancedOptions{DockerSupport: false, GenerateDockerfile: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	adv := decode[sessionView](t, rr).Selection.Advanced
	if adv.GenerateDockerfile {
		t.Error("Dockerfile generation must be off without docker support")
	}
	if adv.DeploymentStrategy != domain.StrategyStandard {
		t.Errorf("Expected default strategy, got %q", adv.DeploymentStrategy)
	}

	rr = ts.request("PUT", path, domain.AdvancedOptions{DeploymentStrategy: "YOLO"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown strategy, got %d", rr.Code)
	}
}

func TestIfMatchPrecondition(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)

	rr := ts.request("GET", "/api/v1/sessions/"+id, nil)
	etag := rr.Header().Get("ETag")

	req := httptest.NewRequest("PUT", "/api/v1/sessions/"+id+"/fields/cloud", bytes.NewReader([]byte(`{"value":"GCP"}`)))
	req.Header.Set("If-Match", etag)
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 with current ETag, got %d", rr.Code)
	}

	req = httptest.NewRequest("PUT", "/api/v1/sessions/"+id+"/fields/cloud", bytes.NewReader([]byte(`{"value":"AWS"}`)))
	req.Header.Set("If-Match", etag)
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusPreconditionFailed {
		t.Errorf("Expected status 412 with stale ETag, got %d", rr.Code)
	}
}

func TestGenerateAndResults(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)
	base := "/api/v1/sessions/" + id
	completeSelection(t, ts.handler, id)

	rr := ts.request("GET", base+"/request", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = ts.request("GET", base+"/files", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 before generating, got %d", rr.Code)
	}

	rr = ts.request("POST", base+"/generate", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	v := decode[sessionView](t, rr)
	if v.Result == nil || len(v.Result.Files) != 2 {
		t.Fatalf("Expected 2 files, got %+v", v.Result)
	}
	if v.Result.Active != ".github/workflows/deploy.yml" {
		t.Errorf("Expected first file active, got %q", v.Result.Active)
	}
	if n := len(ts.shim.Requests()); n != 1 {
		t.Errorf("Expected 1 generator call, got %d", n)
	}

	rr = ts.request("PUT", base+"/files/active", domain.SelectFileRequest{Filename: "infra/main.bicep"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	rr = ts.request("PUT", base+"/files/active", domain.SelectFileRequest{Filename: "nope.txt"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown file, got %d", rr.Code)
	}

	rr = ts.request("GET", base+"/files/active/raw", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != "param location string\n" {
		t.Errorf("Raw content = %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestArchiveDownload(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)
	base := "/api/v1/sessions/" + id

	rr := ts.request("GET", base+"/archive", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without files, got %d", rr.Code)
	}

	completeSelection(t, ts.handler, id)
	if rr := ts.request("POST", base+"/generate", nil); rr.Code != http.StatusOK {
		t.Fatalf("generate: %d", rr.Code)
	}

	rr = ts.request("GET", base+"/archive", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	zr, err := zip.NewReader(bytes.NewReader(rr.Body.Bytes()), int64(rr.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("Expected 2 zip entries, got %d", len(zr.File))
	}

	rr = ts.request("POST", base+"/archive/export", nil)
	if rr.Code != http.StatusNotImplemented {
		t.Errorf("Expected status 501 without an exporter, got %d", rr.Code)
	}
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts.handler)
	base := "/api/v1/sessions/" + id

	rr := ts.request("GET", base+"/summary", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without files, got %d", rr.Code)
	}

	completeSelection(t, ts.handler, id)
	if rr := ts.request("POST", base+"/generate", nil); rr.Code != http.StatusOK {
		t.Fatalf("generate: %d", rr.Code)
	}

	rr = ts.request("GET", base+"/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	first := decode[domain.SummaryResponse](t, rr)
	if first.Cached || first.Summary != "Builds once and promotes through each environment." {
		t.Errorf("Unexpected first summary %+v", first)
	}

	second := decode[domain.SummaryResponse](t, ts.request("GET", base+"/summary", nil))
	if !second.Cached {
		t.Error("Expected the second summary to come from the cache")
	}

	if rr := ts.request("DELETE", base+"/summary", nil); rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	third := decode[domain.SummaryResponse](t, ts.request("GET", base+"/summary", nil))
	if third.Cached {
		t.Error("Expected a fresh summary after invalidation")
	}
}

func TestMissingAPIKeyIsReported(t *testing.T) {
	h := newHandler(t, gemini.New(gemini.Options{APIKey: "", Model: "gemini-2.5-flash"}))
	id := createSession(t, h)
	completeSelection(t, h, id)

	rr := request(h, "POST", "/api/v1/sessions/"+id+"/generate", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[domain.StandardErrorResponse](t, rr)
	if resp.Error.Code != domain.ErrCodeConfiguration {
		t.Errorf("Expected %s, got %s", domain.ErrCodeConfiguration, resp.Error.Code)
	}

	rr = request(h, "GET", "/api/v1/sessions/"+id, nil)
	v := decode[sessionView](t, rr)
	if v.LastError == "" {
		t.Error("Expected the error to be stored on the session")
	}
	if v.Selection.Cloud != "Azure" {
		t.Error("Selection must survive a failed generation")
	}

	rr = request(h, "DELETE", "/api/v1/sessions/"+id+"/error", nil)
	if v := decode[sessionView](t, rr); v.LastError != "" {
		t.Errorf("Expected error dismissed, got %q", v.LastError)
	}
}

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Name() string { return "blocking" }

func (g *blockingGenerator) Generate(ctx context.Context, req prompt.Request) ([]domain.GeneratedFile, error) {
	close(g.started)
	<-g.release
	return []domain.GeneratedFile{{Filename: "README.md", Content: "ok", Description: "Docs"}}, nil
}

func (g *blockingGenerator) Explain(ctx context.Context, files []domain.GeneratedFile) (string, error) {
	return "summary", nil
}

func TestResetDuringGenerationConflicts(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	h := newHandler(t, gen)
	id := createSession(t, h)
	completeSelection(t, h, id)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- request(h, "POST", "/api/v1/sessions/"+id+"/generate", nil)
	}()
	<-gen.started

	rr := request(h, "DELETE", "/api/v1/sessions/"+id, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decode[domain.StandardErrorResponse](t, rr); resp.Error.Code != domain.ErrCodeInProgress {
		t.Errorf("Expected %s, got %s", domain.ErrCodeInProgress, resp.Error.Code)
	}

	close(gen.release)
	if gr := <-done; gr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", gr.Code, gr.Body.String())
	}

	v := decode[sessionView](t, request(h, "GET", "/api/v1/sessions/"+id, nil))
	if v.Result == nil || v.Selection.Cloud != "Azure" {
		t.Errorf("Expected the generation to be kept, got %+v", v)
	}

	rr = request(h, "DELETE", "/api/v1/sessions/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
