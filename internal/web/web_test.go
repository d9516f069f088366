package web_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcnelson/cicd-wizard/internal/generator"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/bcnelson/cicd-wizard/internal/storage/memory"
	"github.com/bcnelson/cicd-wizard/internal/web"
)

const fixture = `files:
  - filename: azure-pipelines.yml
    content: "trigger: [main]\n"
    description: Pipeline definition
summary: Deploys to each stage in order.
`

type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newBrowser(t *testing.T) *browser {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ws := service.NewWizardService(memory.New())
	gs, err := service.NewGenerationService(ws, generator.NewFileShim(path), nil, 4)
	if err != nil {
		t.Fatalf("NewGenerationService: %v", err)
	}
	return &browser{t: t, handler: web.NewRouter(ws, gs, web.Options{})}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rr := httptest.NewRecorder()
	b.handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == "cicd_session" {
			b.cookie = c
		}
	}
	return rr
}

func (b *browser) post(path string, form url.Values) string {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	rr := b.do("POST", path, form)
	if rr.Code != http.StatusSeeOther {
		b.t.Fatalf("POST %s: expected 303, got %d: %s", path, rr.Code, rr.Body.String())
	}
	return rr.Header().Get("Location")
}

func TestWizardPageStartsSession(t *testing.T) {
	b := newBrowser(t)

	rr := b.do("GET", "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if b.cookie == nil || !b.cookie.HttpOnly {
		t.Fatal("Expected an HttpOnly session cookie")
	}
	body := rr.Body.String()
	for _, want := range []string{"Cloud platform", "Development", "Generate templates"} {
		if !strings.Contains(body, want) {
			t.Errorf("wizard page missing %q", want)
		}
	}

	first := b.cookie.Value
	b.do("GET", "/", nil)
	if b.cookie.Value != first {
		t.Error("Expected the session to be reused")
	}
}

func TestExpiredCookieStartsNewSession(t *testing.T) {
	b := newBrowser(t)
	b.cookie = &http.Cookie{Name: "cicd_session", Value: "gone"}

	if rr := b.do("GET", "/", nil); rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if b.cookie.Value == "gone" {
		t.Error("Expected a new session cookie")
	}
}

func TestCompatibilityBanner(t *testing.T) {
	b := newBrowser(t)
	b.do("GET", "/", nil)

	b.post("/fields/appType", url.Values{"value": {"Frontend"}})
	b.post("/fields/targetResource", url.Values{"value": {"FunctionApp"}})

	body := b.do("GET", "/", nil).Body.String()
	if !strings.Contains(body, "Mismatch") {
		t.Error("Expected the compatibility banner")
	}
}

func TestInvalidFieldShowsFlash(t *testing.T) {
	b := newBrowser(t)
	b.do("GET", "/", nil)

	loc := b.post("/fields/cloud", url.Values{"value": {"Mars"}})
	if !strings.HasPrefix(loc, "/?error=") {
		t.Fatalf("Expected a flash redirect, got %q", loc)
	}
	body := b.do("GET", loc, nil).Body.String()
	if !strings.Contains(body, "flash-error") {
		t.Error("Expected the flash message")
	}
}

func TestGenerateFlow(t *testing.T) {
	b := newBrowser(t)
	b.do("GET", "/", nil)

	if loc := b.post("/generate", nil); !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("Expected incomplete selection to be refused, got %q", loc)
	}

	for key, value := range map[string]string{
		"cloud":          "Azure",
		"appType":        "Backend",
		"targetResource": "WebApp",
		"devOps":         "AzureDevOps",
		"architecture":   "Nested",
	} {
		b.post("/fields/"+key, url.Values{"value": {value}})
	}
	b.post("/environments", url.Values{"name": {"UAT"}})
	b.post("/environments/0/move", url.Values{"direction": {"1"}})

	if loc := b.post("/generate", nil); loc != "/results" {
		t.Fatalf("Expected redirect to /results, got %q", loc)
	}

	body := b.do("GET", "/results", nil).Body.String()
	if !strings.Contains(body, "azure-pipelines.yml") {
		t.Error("Expected the generated file on the results page")
	}

	rr := b.do("GET", "/results/raw", nil)
	if rr.Body.String() != "trigger: [main]\n" {
		t.Errorf("Raw content = %q", rr.Body.String())
	}

	rr = b.do("GET", "/results/archive", nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/zip" {
		t.Errorf("Expected a zip download, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}

	b.post("/results/summary", nil)
	body = b.do("GET", "/results", nil).Body.String()
	if !strings.Contains(body, "Deploys to each stage in order.") {
		t.Error("Expected the explanation on the results page")
	}

	b.post("/reset", nil)
	rr = b.do("GET", "/results", nil)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("Expected results to redirect after reset, got %d", rr.Code)
	}
}
