// Package search is a deliberately simple substring scan over usernames and
// post bodies, not a ranking engine. An empty query matches everything.
package search

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"chirp/models"
	"chirp/store"
)

type Index struct {
	store store.Store
}

func NewIndex(st store.Store) *Index {
	return &Index{store: st}
}

// All matches users by username and posts by body or author,
// case-insensitively. Callers present users first; no ranking is implied
// beyond a stable username / recency order within each kind.
func (i *Index) All(ctx context.Context, query string) ([]models.User, []models.Post, error) {
	var (
		users []models.User
		posts []models.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = i.store.FindUsers(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = i.store.FindPosts(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Slice(users, func(a, b int) bool { return users[a].Username < users[b].Username })
	sort.Slice(posts, func(a, b int) bool {
		if posts[a].CreatedAt != posts[b].CreatedAt {
			return posts[a].CreatedAt > posts[b].CreatedAt
		}
		return posts[a].ID > posts[b].ID
	})
	return users, posts, nil
}

// Users matches users by username, case-insensitively.
func (i *Index) Users(ctx context.Context, query string) ([]models.User, error) {
	users, err := i.store.FindUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(a, b int) bool { return users[a].Username < users[b].Username })
	return users, nil
}
