package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/easiergen/internal/model"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	entropyMu sync.Mutex
	entropy   *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credits (
		user_id    TEXT PRIMARY KEY,
		balance    INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credit_grants (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		session_id TEXT NOT NULL UNIQUE,
		credits    INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grants_user ON credit_grants(user_id);

	CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		title      TEXT NOT NULL,
		text       TEXT NOT NULL,
		cta        TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the value stored under key.
func (s *SQLiteStore) Load(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Save stores value under key, replacing any previous value.
func (s *SQLiteStore) Save(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

func (s *SQLiteStore) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM credits WHERE user_id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (s *SQLiteStore) UseCredit(ctx context.Context, userID string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE credits SET balance = balance - 1, updated_at = ?
		 WHERE user_id = ? AND balance > 0`, now, userID)
	if err != nil {
		return false, fmt.Errorf("use credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLiteStore) GrantCredits(ctx context.Context, p GrantParams) (*model.CreditGrant, bool, error) {
	if p.UserID == "" || p.SessionID == "" {
		return nil, false, fmt.Errorf("user id and session id are required")
	}
	if p.AmountTotal < 0 {
		return nil, false, fmt.Errorf("invalid amount %d", p.AmountTotal)
	}

	now := time.Now().UTC()
	grant := &model.CreditGrant{
		ID:        s.newID(),
		UserID:    p.UserID,
		SessionID: p.SessionID,
		Credits:   int(p.AmountTotal / 100),
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO credit_grants (id, user_id, session_id, credits, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		grant.ID, grant.UserID, grant.SessionID, grant.Credits, now.Format(time.RFC3339))
	if err != nil {
		return nil, false, fmt.Errorf("insert grant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		existing, err := scanGrant(tx.QueryRowContext(ctx,
			`SELECT id, user_id, session_id, credits, created_at FROM credit_grants WHERE session_id = ?`,
			p.SessionID))
		if err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credits (user_id, balance, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET balance = balance + excluded.balance, updated_at = excluded.updated_at`,
		grant.UserID, grant.Credits, now.Format(time.RFC3339))
	if err != nil {
		return nil, false, fmt.Errorf("add credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return grant, true, nil
}

func (s *SQLiteStore) SavePost(ctx context.Context, p SavePostParams) (*model.SavedPost, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if p.ID != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE posts SET title = ?, text = ?, cta = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?`,
			p.Draft.Title, p.Draft.Text, p.Draft.CTA, now.Format(time.RFC3339), p.ID, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("post %s: %w", p.ID, ErrNotFound)
		}
		post, err := scanPost(tx.QueryRowContext(ctx, postSelect+` WHERE id = ?`, p.ID))
		if err != nil {
			return nil, err
		}
		return &post, tx.Commit()
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = ?`, p.UserID).Scan(&count); err != nil {
		return nil, err
	}
	if count >= PostLimit {
		return nil, fmt.Errorf("%w: maximum of %d posts", ErrPostLimit, PostLimit)
	}

	post := model.SavedPost{
		ID:        s.newID(),
		UserID:    p.UserID,
		Title:     p.Draft.Title,
		Text:      p.Draft.Text,
		CTA:       p.Draft.CTA,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, title, text, cta, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.UserID, post.Title, post.Text, post.CTA,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	// Round to the stored precision so callers see what a later read returns.
	post.CreatedAt, _ = time.Parse(time.RFC3339, now.Format(time.RFC3339))
	post.UpdatedAt = post.CreatedAt
	return &post, nil
}

const postSelect = `SELECT id, user_id, title, text, cta, created_at, updated_at FROM posts`

func (s *SQLiteStore) GetPost(ctx context.Context, userID, id string) (*model.SavedPost, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context, p ListPostsParams) ([]model.SavedPost, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = PostLimit
	}

	rows, err := s.db.QueryContext(ctx,
		postSelect+` WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, p.UserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.SavedPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *SQLiteStore) RmPost(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row scanner) (model.SavedPost, error) {
	var p model.SavedPost
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Text, &p.CTA, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func scanGrant(row scanner) (model.CreditGrant, error) {
	var g model.CreditGrant
	var createdAt string

	err := row.Scan(&g.ID, &g.UserID, &g.SessionID, &g.Credits, &createdAt)
	if err != nil {
		return g, err
	}
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return g, nil
}
