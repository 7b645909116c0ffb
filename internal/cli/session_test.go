package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/easiergen/internal/model"
	"github.com/rcliao/easiergen/internal/store"
)

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	sess, err := loadSession(ctx, s)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if sess.Draft() != (model.Draft{}) {
		t.Fatalf("expected empty draft, got %+v", sess.Draft())
	}

	sess.SetField(model.FieldTitle, "Hello world")
	if _, err := sess.Select(model.FieldTitle, 0, 5); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := saveSession(ctx, s, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := loadSession(ctx, s)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Draft().Title != "Hello world" {
		t.Errorf("expected saved title, got %q", again.Draft().Title)
	}
	sel, active := again.Selection()
	if !active || sel.Field != model.FieldTitle || sel.Start != 0 || sel.End != 5 {
		t.Errorf("expected restored selection, got %+v active=%v", sel, active)
	}
}

func TestLoadSessionIgnoresCorruptDraft(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.Save(ctx, draftKey, "{not json")
	sess, err := loadSession(ctx, s)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, active := sess.Selection(); active {
		t.Error("expected fresh session")
	}
}

func TestDraftViewText(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	sess, _ := loadSession(ctx, s)
	sess.SetField(model.FieldText, strings.Repeat("a", model.MaxExportChars+1))

	v := newDraftView(sess)
	if v.Exportable {
		t.Error("expected draft over the limit not to be exportable")
	}
	if !strings.Contains(v.String(), "3001/3000 characters (too long to copy)") {
		t.Errorf("unexpected text view %q", v.String())
	}
}

func TestSuggestionsText(t *testing.T) {
	out := suggestionsText([]model.Suggestion{
		{Title: "A", Text: "a", CTA: "go"},
		{Title: "B", Text: "b", CTA: "go"},
	})
	if !strings.HasPrefix(out, "[1] A") || !strings.Contains(out, "[2] B") {
		t.Errorf("unexpected output %q", out)
	}
}
