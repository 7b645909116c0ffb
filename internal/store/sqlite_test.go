package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rcliao/easiergen/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSlotLoadAndSave(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, ok, err := s.Load(ctx, "free_usage"); err != nil || ok {
		t.Fatalf("expected empty slot, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, "free_usage", `{"count":1,"date":"2026-01-01"}`); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "free_usage", `{"count":2,"date":"2026-01-01"}`); err != nil {
		t.Fatalf("save again: %v", err)
	}

	v, ok, err := s.Load(ctx, "free_usage")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if v != `{"count":2,"date":"2026-01-01"}` {
		t.Errorf("expected overwritten value, got %q", v)
	}
}

func TestGrantAndUseCredits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if b, _ := s.Balance(ctx, "u1"); b != 0 {
		t.Errorf("expected 0 balance for unknown user, got %d", b)
	}
	if ok, _ := s.UseCredit(ctx, "u1"); ok {
		t.Error("expected UseCredit to fail with no balance")
	}

	grant, applied, err := s.GrantCredits(ctx, GrantParams{UserID: "u1", SessionID: "cs_1", AmountTotal: 299})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !applied || grant.Credits != 2 {
		t.Errorf("expected 2 credits applied, got %+v applied=%v", grant, applied)
	}

	ok, err := s.UseCredit(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("use credit: ok=%v err=%v", ok, err)
	}
	if b, _ := s.Balance(ctx, "u1"); b != 1 {
		t.Errorf("expected balance 1, got %d", b)
	}
	s.UseCredit(ctx, "u1")
	if ok, _ := s.UseCredit(ctx, "u1"); ok {
		t.Error("expected UseCredit to fail at zero")
	}
	if b, _ := s.Balance(ctx, "u1"); b != 0 {
		t.Errorf("balance must not go negative, got %d", b)
	}
}

func TestGrantIsIdempotentPerSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, _, err := s.GrantCredits(ctx, GrantParams{UserID: "u1", SessionID: "cs_1", AmountTotal: 1000})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	again, applied, err := s.GrantCredits(ctx, GrantParams{UserID: "u1", SessionID: "cs_1", AmountTotal: 1000})
	if err != nil {
		t.Fatalf("regrant: %v", err)
	}
	if applied {
		t.Error("expected duplicate session not to apply")
	}
	if again.ID != first.ID {
		t.Errorf("expected existing grant %s, got %s", first.ID, again.ID)
	}
	if b, _ := s.Balance(ctx, "u1"); b != 10 {
		t.Errorf("expected balance 10, got %d", b)
	}

	if _, _, err := s.GrantCredits(ctx, GrantParams{UserID: "u1", SessionID: "cs_2", AmountTotal: -1}); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestConcurrentUseCredit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.GrantCredits(ctx, GrantParams{UserID: "u1", SessionID: "cs_1", AmountTotal: 500})

	var wg sync.WaitGroup
	var mu sync.Mutex
	used := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := s.UseCredit(ctx, "u1"); err == nil && ok {
				mu.Lock()
				used++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if used != 5 {
		t.Errorf("expected exactly 5 successful uses, got %d", used)
	}
}

func TestSaveAndGetPost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	post, err := s.SavePost(ctx, SavePostParams{
		UserID: "u1",
		Draft:  model.Draft{Title: "Hook", Text: "Body", CTA: "Follow"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if post.ID == "" {
		t.Error("expected non-empty ID")
	}

	got, err := s.GetPost(ctx, "u1", post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Hook" || got.Text != "Body" || got.CTA != "Follow" {
		t.Errorf("unexpected post %+v", got)
	}

	if _, err := s.GetPost(ctx, "u2", post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	post, _ := s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "v1"}})
	updated, err := s.SavePost(ctx, SavePostParams{ID: post.ID, UserID: "u1", Draft: model.Draft{Title: "v2"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != post.ID || updated.Title != "v2" {
		t.Errorf("unexpected update result %+v", updated)
	}

	list, _ := s.ListPosts(ctx, ListPostsParams{UserID: "u1"})
	if len(list) != 1 {
		t.Errorf("expected update in place, got %d posts", len(list))
	}

	_, err = s.SavePost(ctx, SavePostParams{ID: "missing", UserID: "u1"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var last *model.SavedPost
	for i := 0; i < PostLimit; i++ {
		p, err := s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "t"}})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		last = p
	}

	_, err := s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "one too many"}})
	if !errors.Is(err, ErrPostLimit) {
		t.Fatalf("expected ErrPostLimit, got %v", err)
	}

	// Updates are still allowed at the limit.
	if _, err := s.SavePost(ctx, SavePostParams{ID: last.ID, UserID: "u1", Draft: model.Draft{Title: "edit"}}); err != nil {
		t.Errorf("update at limit: %v", err)
	}

	// Other users are unaffected.
	if _, err := s.SavePost(ctx, SavePostParams{UserID: "u2", Draft: model.Draft{Title: "t"}}); err != nil {
		t.Errorf("other user save: %v", err)
	}
}

func TestRmPost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	post, _ := s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "bye"}})
	if err := s.RmPost(ctx, "u1", post.ID); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := s.GetPost(ctx, "u1", post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after rm, got %v", err)
	}
	if err := s.RmPost(ctx, "u1", post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second rm, got %v", err)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "a"}})
	s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "b"}})

	posts, err := s.ExportPosts(ctx, "u1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 exported posts, got %d", len(posts))
	}

	n, err := s.ImportPosts(ctx, "u2", posts)
	if err != nil || n != 2 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
	list, _ := s.ListPosts(ctx, ListPostsParams{UserID: "u2"})
	if len(list) != 2 {
		t.Errorf("expected 2 imported posts, got %d", len(list))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.SavePost(ctx, SavePostParams{UserID: "u1", Draft: model.Draft{Title: "a"}})
	s.GrantCredits(ctx, GrantParams{UserID: "u2", SessionID: "cs", AmountTotal: 300})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalPosts != 1 || st.CreditAccounts != 1 || st.CreditsHeld != 3 || st.Grants != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	if len(st.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(st.Users))
	}
}

func TestStatsClosedStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "closed.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if st, err := s.Stats(context.Background(), dbPath); err == nil {
		t.Fatalf("expected error on closed store, got %+v", st)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
