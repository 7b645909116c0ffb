package helptext

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "editor,ideas,preview" {
		t.Fatalf("unexpected topics %q", got)
	}
}

func TestRender(t *testing.T) {
	out, err := Render("editor")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<h1>Post Editor</h1>") {
		t.Errorf("expected heading, got %s", out)
	}
	if !strings.Contains(out, "<br>") {
		t.Errorf("expected hard line breaks, got %s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out, err := Render("ideas")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected GFM table, got %s", out)
	}
}

func TestRenderPreview(t *testing.T) {
	out, err := Render("preview")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<h1>Preview</h1>") {
		t.Errorf("expected heading, got %s", out)
	}
	if !strings.Contains(out, "3000 characters") {
		t.Errorf("expected the length limit, got %s", out)
	}
}

func TestRenderUnknown(t *testing.T) {
	if _, err := Render("billing"); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}
