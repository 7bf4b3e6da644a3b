package stylebook

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/dgallion1/blockbook/internal/settings"
)

func sampleExamples() []Example {
	return []Example{
		headingExample(),
		{Name: "core/quote", Title: "Quote", Category: "text", Blocks: []block.Block{
			block.New("quote", nil, block.New("paragraph", map[string]any{"content": "Hi"})),
		}},
		{Name: "core/image", Title: "Image", Category: "media", Blocks: []block.Block{
			block.New("image", map[string]any{"url": "https://example.com/a.jpg", "alt": "A"}),
		}},
	}
}

func TestBook_Gestures(t *testing.T) {
	var selected []string
	closed := 0
	b := NewBook(sampleExamples(), nil, nil, ObserverFuncs{
		Select: func(name string) { selected = append(selected, name) },
		Close:  func() { closed++ },
	})

	if err := b.Activate("core/quote"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(selected) != 1 || selected[0] != "core/quote" {
		t.Errorf("expected quote selection reported, got %v", selected)
	}

	if b.HandleKey("Enter", false) {
		t.Error("expected Enter to be ignored")
	}
	if b.HandleKey(KeyEscape, true) {
		t.Error("expected handled Escape to be ignored")
	}
	if closed != 0 {
		t.Fatalf("expected no close yet, got %d", closed)
	}
	if !b.HandleKey(KeyEscape, false) {
		t.Error("expected Escape to be consumed")
	}
	b.Close()
	if closed != 2 {
		t.Errorf("expected 2 close reports, got %d", closed)
	}
}

func TestSession_StateMachine(t *testing.T) {
	store := NewSessions(10, time.Hour)
	sess := store.Open()
	if sess.Snapshot().State != StateUnselected {
		t.Fatalf("expected unselected, got %s", sess.Snapshot().State)
	}

	b := NewBook(sampleExamples(), nil, sess.IsSelected, sess)
	b.Activate("core/image")
	if !sess.IsSelected("core/image") || sess.IsSelected("core/quote") {
		t.Error("expected image to be the only selection")
	}
	b.Activate("core/quote")
	if snap := sess.Snapshot(); snap.State != StateSelected || snap.Selected != "core/quote" {
		t.Errorf("expected quote selected, got %+v", snap)
	}

	b.HandleKey(KeyEscape, false)
	snap := sess.Snapshot()
	if snap.State != StateClosed || snap.Selected != "" {
		t.Errorf("expected closed with no selection, got %+v", snap)
	}
	b.Activate("core/image")
	if sess.IsSelected("core/image") {
		t.Error("expected closed session to ignore selection")
	}
}

func TestSessions_LifeCycle(t *testing.T) {
	store := NewSessions(2, time.Hour)
	first := store.Open()
	time.Sleep(time.Millisecond)
	second := store.Open()
	time.Sleep(time.Millisecond)
	if _, err := store.Get(first.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	time.Sleep(time.Millisecond)

	// At capacity the least recently used session goes.
	store.Open()
	if _, err := store.Get(second.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected second session evicted, got %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Len())
	}

	if err := store.Close(first.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if first.Snapshot().State != StateClosed {
		t.Error("expected closed state after Close")
	}
	if err := store.Close(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessions_Cleanup(t *testing.T) {
	store := NewSessions(0, 10*time.Millisecond)
	idle := store.Open()
	closed := store.Open()
	closed.OnClose()
	time.Sleep(20 * time.Millisecond)
	fresh := store.Open()

	store.Cleanup()
	if _, err := store.Get(idle.ID); err == nil {
		t.Error("expected idle session removed")
	}
	if _, err := store.Get(closed.ID); err == nil {
		t.Error("expected closed session removed")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Errorf("expected fresh session kept: %v", err)
	}
}

func TestPreviewSettings(t *testing.T) {
	in := settings.Settings{"styles": []any{"p{}"}}
	out := PreviewSettings(in)
	if out[PreviewModeKey] != true {
		t.Error("expected preview mode on")
	}
	if _, ok := in[PreviewModeKey]; ok {
		t.Error("expected input settings untouched")
	}
}

func TestIsWide(t *testing.T) {
	if IsWide(600) || !IsWide(601) {
		t.Error("expected the wide layout strictly above 600px")
	}
}

func TestPage_Render(t *testing.T) {
	examples := sampleExamples()
	tabs := []Tab{{Name: "text", Title: "Text"}, {Name: "media", Title: "Media"}}
	b := NewBook(examples, tabs, func(name string) bool { return name == "core/quote" }, nil)

	var buf bytes.Buffer
	err := Page{
		Book:     b,
		Settings: settings.Settings{"styles": []any{map[string]any{"css": "body{color:red}"}}},
		Width:    800,
		BaseURL:  "/api/style-book",
	}.Render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"body{color:red}",
		`class="edit-site-style-book is-wide"`,
		`aria-label="Open Headings styles in Styles panel"`,
		`class="edit-site-style-book__example is-selected"`,
		`<h1 class="wp-block-heading">Code Is Poetry</h1>`,
		`<h5 class="wp-block-heading">Code Is Poetry</h5>`,
		`href="/api/style-book?category=media"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(out, "a.jpg") {
		t.Error("expected media examples to stay off the text tab")
	}
}

func TestTabURL_KeepsQuery(t *testing.T) {
	if got := tabURL("/api/style-book/preview?session=abc&width=800", "media"); got != "/api/style-book/preview?category=media&session=abc&width=800" {
		t.Errorf("got %q", got)
	}
}

func TestExportYAML(t *testing.T) {
	data, err := ExportYAML(sampleExamples()[:2], []Tab{{Name: "text", Title: "Text"}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(data)
	for _, want := range []string{"name: text", "name: core/heading", "title: Headings", "wp:heading"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected export to contain %q:\n%s", want, out)
		}
	}
}
