package store

import (
	"context"
	"fmt"

	"github.com/rcliao/easiergen/internal/model"
)

// ExportPosts returns all posts of a user, oldest first.
func (s *SQLiteStore) ExportPosts(ctx context.Context, userID string) ([]model.SavedPost, error) {
	rows, err := s.db.QueryContext(ctx, postSelect+` WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.SavedPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ImportPosts stores exported posts as new posts for userID. It stops at the
// first error, including ErrPostLimit, and reports how many were stored.
func (s *SQLiteStore) ImportPosts(ctx context.Context, userID string, posts []model.SavedPost) (int, error) {
	imported := 0
	for _, p := range posts {
		_, err := s.SavePost(ctx, SavePostParams{
			UserID: userID,
			Draft:  model.Draft{Title: p.Title, Text: p.Text, CTA: p.CTA},
		})
		if err != nil {
			return imported, fmt.Errorf("import post %d: %w", imported+1, err)
		}
		imported++
	}
	return imported, nil
}
