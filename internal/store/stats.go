package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string      `json:"db_path"`
	DBSizeBytes    int64       `json:"db_size_bytes"`
	TotalPosts     int         `json:"total_posts"`
	CreditAccounts int         `json:"credit_accounts"`
	CreditsHeld    int         `json:"credits_held"`
	Grants         int         `json:"grants"`
	Users          []UserStats `json:"users"`
}

// UserStats holds per-user counts.
type UserStats struct {
	UserID  string `json:"user_id"`
	Posts   int    `json:"posts"`
	Credits int    `json:"credits"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&st.TotalPosts); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM credits`).Scan(&st.CreditAccounts, &st.CreditsHeld); err != nil {
		return nil, fmt.Errorf("count credits: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credit_grants`).Scan(&st.Grants); err != nil {
		return nil, fmt.Errorf("count grants: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id,
		       (SELECT COUNT(*) FROM posts p WHERE p.user_id = u.user_id) AS posts,
		       COALESCE((SELECT balance FROM credits c WHERE c.user_id = u.user_id), 0) AS credits
		FROM (SELECT user_id FROM posts UNION SELECT user_id FROM credits) u
		ORDER BY posts DESC, u.user_id`)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u UserStats
		if err := rows.Scan(&u.UserID, &u.Posts, &u.Credits); err != nil {
			return nil, err
		}
		st.Users = append(st.Users, u)
	}

	return st, rows.Err()
}
