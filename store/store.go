// Package store defines durable keyed record storage for the three entity
// kinds. Implementations must make every Update* call an atomic
// read-modify-write on that record: concurrent mutations of the same record
// serialize, and a lost increment is a correctness bug. Cross-record
// coordination is the caller's job.
package store

import (
	"context"

	"github.com/google/uuid"

	"chirp/models"
)

// Store is the persistence surface. Lookups return apperr.NotFound for
// absent keys; duplicate usernames surface as apperr.Conflict; storage
// timeouts and exhausted contention retries surface as apperr.Transient.
// Bulk and list reads return records in storage order; callers own sorting.
type Store interface {
	InsertUser(ctx context.Context, u *models.User) error
	User(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// UpdateUser loads the record, applies mutate to a private copy and
	// commits it with an optimistic version check, retrying on conflict.
	// An error from mutate aborts the update and is returned unchanged.
	UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error)
	// FindUsers returns users whose username contains match
	// case-insensitively. An empty match returns every user.
	FindUsers(ctx context.Context, match string) ([]models.User, error)

	InsertPost(ctx context.Context, p *models.Post) error
	Post(ctx context.Context, id string) (*models.Post, error)
	PostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, mutate func(*models.Post) error) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (*models.Post, error)
	// PostsByAuthors returns posts whose author username is in authors;
	// nil means no restriction.
	PostsByAuthors(ctx context.Context, authors []string) ([]models.Post, error)
	// FindPosts returns posts whose body or author contains match
	// case-insensitively. An empty match returns every post.
	FindPosts(ctx context.Context, match string) ([]models.Post, error)

	InsertComment(ctx context.Context, c *models.Comment) error
	Comment(ctx context.Context, id string) (*models.Comment, error)
	CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error)
	CommentsByParent(ctx context.Context, parentID string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id string, mutate func(*models.Comment) error) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) (*models.Comment, error)
	DeleteCommentsByParent(ctx context.Context, parentID string) (int64, error)
}

// NewID mints an opaque record key. Keys are engine-neutral and compare as
// plain strings for ordering tie-breaks.
func NewID() string {
	return uuid.NewString()
}
