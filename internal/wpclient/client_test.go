package wpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/blockbook/internal/blocktype"
	"github.com/dgallion1/blockbook/internal/templates"
)

const templatesJSON = `[
 {"slug":"index","theme":"tt4","title":{"raw":"Index","rendered":"Index"},"content":{"raw":"<!-- wp:post-content /-->"}},
 {"slug":"single","theme":"tt4","title":{"raw":"","rendered":"Single Posts"},"content":{"raw":"<!-- wp:group --><!-- wp:post-content {\"align\":\"full\"} /--><!-- /wp:group -->"}}
]`

const blockTypesJSON = `[
 {"name":"core/paragraph","title":"Paragraph","category":"text","icon":"editor-paragraph",
  "attributes":{"content":{"type":"string"},"dropCap":{"type":"boolean","default":false}},
  "supports":{"anchor":true},"example":{"attributes":{"content":"Hi"}},"variations":[]},
 {"name":"acme/card","title":"Card","category":"design","icon":null,
  "attributes":[],"supports":[],"example":[],
  "variations":[{"name":"wide","title":"Wide card","attributes":{"width":"wide"},"isActive":["width"]}]},
 {"name":"acme/badge","title":"Badge","category":"widgets","icon":{"src":"<svg/>"},
  "attributes":{"label":{"type":["string","null"]}},"supports":{"inserter":false}}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "app pass" {
			http.Error(w, `{"code":"rest_forbidden"}`, http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("context") != "edit" {
			t.Errorf("expected context=edit, got %q", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/wp-json/wp/v2/templates":
			w.Write([]byte(templatesJSON))
		case "/wp-json/wp/v2/block-types":
			w.Write([]byte(blockTypesJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_TemplatesBySlug(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/wp-json/", "admin", "app pass")

	got, err := c.TemplatesBySlug(context.Background(), "single", "page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 template, got %d", len(got))
	}
	if got[0].Slug != "single" || got[0].Source != "remote" || got[0].Title != "Single Posts" {
		t.Errorf("unexpected template: %+v", got[0])
	}
	if !strings.Contains(got[0].Content, "wp:post-content") {
		t.Errorf("content not carried: %q", got[0].Content)
	}

	slugs, err := c.Slugs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(slugs, ",") != "index,single" {
		t.Errorf("expected [index single], got %v", slugs)
	}

	// Usable as a template registry.
	var _ templates.Registry = c
}

func TestClient_Unauthorized(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/wp-json", "admin", "wrong")

	_, err := c.TemplatesBySlug(context.Background(), "single")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 401") || !strings.Contains(err.Error(), "rest_forbidden") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}

func TestClient_BlockTypes(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/wp-json", "admin", "app pass")

	types, err := c.BlockTypes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(types))
	}

	para := types[0]
	if para.Icon != "editor-paragraph" || para.Example == nil || para.Example.Attributes["content"] != "Hi" {
		t.Errorf("paragraph not decoded: %+v", para)
	}
	if para.Attributes["dropCap"].Default != false {
		t.Errorf("expected dropCap default false, got %v", para.Attributes["dropCap"].Default)
	}

	card := types[1]
	if card.Example != nil || card.Attributes != nil || len(card.Supports) != 0 {
		t.Errorf("empty PHP arrays should decode as absent: %+v", card)
	}
	if len(card.Variations) != 1 || !card.Variations[0].Matches(map[string]any{"width": "wide"}) {
		t.Errorf("variation not decoded: %+v", card.Variations)
	}

	badge := types[2]
	if badge.Icon != "" || badge.Attributes["label"].Type != "string" || badge.Supports.Inserter() {
		t.Errorf("badge not decoded: %+v", badge)
	}
}

func TestClient_RegisterBlockTypes(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/wp-json", "admin", "app pass")

	reg := blocktype.NewRegistry()
	if err := reg.Register(blocktype.Type{Name: "core/paragraph", Title: "Local paragraph", Category: "text"}); err != nil {
		t.Fatal(err)
	}
	added, err := c.RegisterBlockTypes(context.Background(), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}
	if p, _ := reg.Get("core/paragraph"); p.Title != "Local paragraph" {
		t.Errorf("local definition replaced: %+v", p)
	}
	if _, ok := reg.Get("acme/card"); !ok {
		t.Error("expected acme/card registered")
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(templatesJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	c.backoff = func(int) time.Duration { return 0 }

	got, err := c.TemplatesBySlug(context.Background(), "index")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || calls != 3 {
		t.Errorf("expected success on third call, got %d templates after %d calls", len(got), calls)
	}
	if snap := c.Stats.Snapshot(); snap.Count != 3 || snap.Retries != 2 {
		t.Errorf("expected 3 samples and 2 retries, got %+v", snap)
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	c.backoff = func(int) time.Duration { return 0 }

	_, err := c.Slugs(context.Background())
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if calls != MaxRetries+1 {
		t.Errorf("expected %d calls, got %d", MaxRetries+1, calls)
	}
}

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(ms)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 || snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("unexpected bounds: %+v", snap)
	}
	if snap.AvgMs != 300 || snap.P50Ms != 300 {
		t.Fatalf("expected avg=p50=300, got %+v", snap)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(100)
	stats.RecordRetry()
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 || snap.Retries != 0 {
		t.Fatalf("expected empty snapshot after prune, got %+v", snap)
	}

	stats.Record(-10)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 0 {
		t.Fatalf("expected one clamped sample, got %+v", snap)
	}
}
