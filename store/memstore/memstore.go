// Package memstore is an in-memory Store used by tests and local runs.
// Mutations use per-record optimistic version checks: the map locks are held
// only to read or swap a record, never across a caller's mutate func, so
// unrelated records stay independent.
package memstore

import (
	"context"
	"strings"
	"sync"

	"chirp/apperr"
	"chirp/models"
	"chirp/store"
)

const maxUpdateRetries = 5

type Store struct {
	usersMu    sync.RWMutex
	users      map[string]*models.User
	byUsername map[string]string

	postsMu sync.RWMutex
	posts   map[string]*models.Post

	commentsMu sync.RWMutex
	comments   map[string]*models.Comment
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
		posts:      make(map[string]*models.Post),
		comments:   make(map[string]*models.Comment),
	}
}

// ---- users ----

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.Transient, "insert user", err)
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if _, ok := s.byUsername[u.Username]; ok {
		return apperr.Newf(apperr.Conflict, "username %q already exists", u.Username)
	}
	if _, ok := s.users[u.ID]; ok {
		return apperr.Newf(apperr.Conflict, "user %q already exists", u.ID)
	}
	s.users[u.ID] = u.Clone()
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *Store) User(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get user", err)
	}
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return u.Clone(), nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get user", err)
	}
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return s.users[id].Clone(), nil
}

func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get users", err)
	}
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u.Clone())
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Wrap(apperr.Transient, "update user", err)
		}
		s.usersMu.RLock()
		cur, ok := s.users[id]
		if !ok {
			s.usersMu.RUnlock()
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		snap := cur.Clone()
		s.usersMu.RUnlock()

		if err := mutate(snap); err != nil {
			return nil, err
		}
		snap.Version++

		s.usersMu.Lock()
		live, ok := s.users[id]
		if !ok {
			s.usersMu.Unlock()
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		if live.Version == snap.Version-1 {
			s.users[id] = snap
			s.usersMu.Unlock()
			return snap.Clone(), nil
		}
		s.usersMu.Unlock()
	}
	return nil, apperr.New(apperr.Transient, "user record contention")
}

func (s *Store) FindUsers(ctx context.Context, match string) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "find users", err)
	}
	needle := strings.ToLower(match)
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	var out []models.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			out = append(out, *u.Clone())
		}
	}
	return out, nil
}

// ---- posts ----

func (s *Store) InsertPost(ctx context.Context, p *models.Post) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.Transient, "insert post", err)
	}
	s.postsMu.Lock()
	defer s.postsMu.Unlock()
	if _, ok := s.posts[p.ID]; ok {
		return apperr.Newf(apperr.Conflict, "post %q already exists", p.ID)
	}
	s.posts[p.ID] = p.Clone()
	return nil
}

func (s *Store) Post(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get post", err)
	}
	s.postsMu.RLock()
	defer s.postsMu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	return p.Clone(), nil
}

func (s *Store) PostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get posts", err)
	}
	s.postsMu.RLock()
	defer s.postsMu.RUnlock()
	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, mutate func(*models.Post) error) (*models.Post, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Wrap(apperr.Transient, "update post", err)
		}
		s.postsMu.RLock()
		cur, ok := s.posts[id]
		if !ok {
			s.postsMu.RUnlock()
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		snap := cur.Clone()
		s.postsMu.RUnlock()

		if err := mutate(snap); err != nil {
			return nil, err
		}
		snap.Version++

		s.postsMu.Lock()
		live, ok := s.posts[id]
		if !ok {
			s.postsMu.Unlock()
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		if live.Version == snap.Version-1 {
			s.posts[id] = snap
			s.postsMu.Unlock()
			return snap.Clone(), nil
		}
		s.postsMu.Unlock()
	}
	return nil, apperr.New(apperr.Transient, "post record contention")
}

func (s *Store) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "delete post", err)
	}
	s.postsMu.Lock()
	defer s.postsMu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	delete(s.posts, id)
	return p, nil
}

func (s *Store) PostsByAuthors(ctx context.Context, authors []string) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "list posts", err)
	}
	var allowed map[string]bool
	if authors != nil {
		allowed = make(map[string]bool, len(authors))
		for _, a := range authors {
			allowed[a] = true
		}
	}
	s.postsMu.RLock()
	defer s.postsMu.RUnlock()
	var out []models.Post
	for _, p := range s.posts {
		if allowed == nil || allowed[p.Author] {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (s *Store) FindPosts(ctx context.Context, match string) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "find posts", err)
	}
	needle := strings.ToLower(match)
	s.postsMu.RLock()
	defer s.postsMu.RUnlock()
	var out []models.Post
	for _, p := range s.posts {
		if strings.Contains(strings.ToLower(p.Body), needle) ||
			strings.Contains(strings.ToLower(p.Author), needle) {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

// ---- comments ----

func (s *Store) InsertComment(ctx context.Context, c *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.Transient, "insert comment", err)
	}
	s.commentsMu.Lock()
	defer s.commentsMu.Unlock()
	if _, ok := s.comments[c.ID]; ok {
		return apperr.Newf(apperr.Conflict, "comment %q already exists", c.ID)
	}
	s.comments[c.ID] = c.Clone()
	return nil
}

func (s *Store) Comment(ctx context.Context, id string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get comment", err)
	}
	s.commentsMu.RLock()
	defer s.commentsMu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}
	return c.Clone(), nil
}

func (s *Store) CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "get comments", err)
	}
	s.commentsMu.RLock()
	defer s.commentsMu.RUnlock()
	out := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (s *Store) CommentsByParent(ctx context.Context, parentID string) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "list comments", err)
	}
	s.commentsMu.RLock()
	defer s.commentsMu.RUnlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.ParentID == parentID {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, mutate func(*models.Comment) error) (*models.Comment, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Wrap(apperr.Transient, "update comment", err)
		}
		s.commentsMu.RLock()
		cur, ok := s.comments[id]
		if !ok {
			s.commentsMu.RUnlock()
			return nil, apperr.New(apperr.NotFound, "comment not found")
		}
		snap := cur.Clone()
		s.commentsMu.RUnlock()

		if err := mutate(snap); err != nil {
			return nil, err
		}
		snap.Version++

		s.commentsMu.Lock()
		live, ok := s.comments[id]
		if !ok {
			s.commentsMu.Unlock()
			return nil, apperr.New(apperr.NotFound, "comment not found")
		}
		if live.Version == snap.Version-1 {
			s.comments[id] = snap
			s.commentsMu.Unlock()
			return snap.Clone(), nil
		}
		s.commentsMu.Unlock()
	}
	return nil, apperr.New(apperr.Transient, "comment record contention")
}

func (s *Store) DeleteComment(ctx context.Context, id string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "delete comment", err)
	}
	s.commentsMu.Lock()
	defer s.commentsMu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}
	delete(s.comments, id)
	return c, nil
}

func (s *Store) DeleteCommentsByParent(ctx context.Context, parentID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Wrap(apperr.Transient, "delete comments", err)
	}
	s.commentsMu.Lock()
	defer s.commentsMu.Unlock()
	var n int64
	for id, c := range s.comments {
		if c.ParentID == parentID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}
