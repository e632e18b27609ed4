package scm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestPRClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("token", "acme", "widgets", "main", t.TempDir(), zap.NewNop())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parsing test server url: %v", err)
	}
	c.apiClient.BaseURL = base
	return c
}

func TestOpenPullRequest_TargetsBaseBranch(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	c := newTestPRClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 7, "html_url": "https://github.com/acme/widgets/pull/7", "title": "PROJ-123: Fix null check", "state": "open"}`))
	}))

	pr, err := c.OpenPullRequest(context.Background(), "codex/PROJ-123", "PROJ-123: Fix null check", "body text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotPath, "/repos/acme/widgets/pulls") {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if gotBody["base"] != "main" {
		t.Errorf("expected base branch main, got %v", gotBody["base"])
	}
	if gotBody["head"] != "codex/PROJ-123" {
		t.Errorf("expected head branch codex/PROJ-123, got %v", gotBody["head"])
	}
	if pr.PRURL != "https://github.com/acme/widgets/pull/7" {
		t.Errorf("unexpected pr url %q", pr.PRURL)
	}
	if pr.PRNumber != 7 {
		t.Errorf("unexpected pr number %d", pr.PRNumber)
	}
}

func TestOpenPullRequest_Non2xx_SurfacesStatus(t *testing.T) {
	c := newTestPRClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Validation Failed"}`, http.StatusUnprocessableEntity)
	}))

	_, err := c.OpenPullRequest(context.Background(), "codex/PROJ-123", "title", "body")
	if err == nil {
		t.Fatal("expected error for 422 response")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("expected status code in error, got %q", err.Error())
	}
}
