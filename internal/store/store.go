// Package store provides local persistence: the key-value slot, the credit
// balance, and saved posts, with a SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/easiergen/internal/model"
)

// PostLimit is the maximum number of saved posts per user.
const PostLimit = 15

var (
	// ErrNotFound is returned when a post does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrPostLimit is returned when creating a post would exceed PostLimit.
	ErrPostLimit = errors.New("post limit reached")
)

// SavePostParams holds parameters for saving a post. An empty ID creates a
// new post; otherwise the existing post is updated.
type SavePostParams struct {
	ID     string
	UserID string
	Draft  model.Draft
}

// ListPostsParams holds parameters for listing posts.
type ListPostsParams struct {
	UserID string
	Limit  int
}

// GrantParams describes a completed checkout. One credit is granted per 100
// minor currency units.
type GrantParams struct {
	UserID      string
	SessionID   string
	AmountTotal int64
}

// Store defines the persistence interface.
type Store interface {
	// Load reads a key-value slot.
	Load(ctx context.Context, key string) (string, bool, error)
	// Save writes a key-value slot.
	Save(ctx context.Context, key, value string) error

	// Balance returns the user's credit balance, 0 if the user has none.
	Balance(ctx context.Context, userID string) (int, error)
	// UseCredit decrements the balance by one if it is positive.
	UseCredit(ctx context.Context, userID string) (bool, error)
	// GrantCredits applies a checkout once per session. applied is false for
	// a session that was already granted.
	GrantCredits(ctx context.Context, p GrantParams) (grant *model.CreditGrant, applied bool, err error)

	// SavePost creates or updates a post.
	SavePost(ctx context.Context, p SavePostParams) (*model.SavedPost, error)
	// GetPost returns one post owned by userID.
	GetPost(ctx context.Context, userID, id string) (*model.SavedPost, error)
	// ListPosts lists a user's posts, newest first.
	ListPosts(ctx context.Context, p ListPostsParams) ([]model.SavedPost, error)
	// RmPost deletes a post.
	RmPost(ctx context.Context, userID, id string) error

	// Close closes the store.
	Close() error
}
