// Package content implements create, edit and delete for posts and
// comments: authorship enforcement, cascading deletion, and the comment
// counter updates that keep Post.AmtComments truthful.
package content

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"chirp/apperr"
	"chirp/counter"
	"chirp/models"
	"chirp/store"
)

// CommentsPerPage is the fixed page size for comment listings.
const CommentsPerPage = 10

type Service struct {
	store    store.Store
	counters *counter.Ledger
	log      *slog.Logger
}

func NewService(st store.Store, counters *counter.Ledger, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, counters: counters, log: log}
}

// CreatePost inserts a post authored by authorID and appends its key to the
// author's postIds. A body empty after trimming needs a media reference.
func (s *Service) CreatePost(ctx context.Context, authorID, body, media string) (*models.Post, error) {
	author, err := s.store.User(ctx, authorID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown author identity")
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" && media == "" {
		return nil, apperr.New(apperr.Validation, "post body cannot be empty")
	}

	post := &models.Post{
		ID:        store.NewID(),
		Body:      body,
		Author:    author.Username,
		Media:     media,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.store.InsertPost(ctx, post); err != nil {
		return nil, err
	}
	_, err = s.store.UpdateUser(ctx, author.ID, func(u *models.User) error {
		u.PostIDs = append(u.PostIDs, post.ID)
		return nil
	})
	if err != nil {
		// unwind the insert so the post never exists without an owner
		if _, derr := s.store.DeletePost(ctx, post.ID); derr != nil && !apperr.Is(derr, apperr.NotFound) {
			s.log.Error("orphaned post after failed ownership append", "post", post.ID, "err", derr)
		}
		return nil, err
	}
	return post, nil
}

// EditPost updates a post's body and media. Authorship is checked against
// the requester's postIds, not the denormalized author string.
func (s *Service) EditPost(ctx context.Context, requesterID, postID, body, media string) (*models.Post, error) {
	requester, err := s.store.User(ctx, requesterID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown requester identity")
	}
	if err != nil {
		return nil, err
	}
	if !slices.Contains(requester.PostIDs, postID) {
		return nil, apperr.New(apperr.Forbidden, "not the author of this post")
	}
	if strings.TrimSpace(body) == "" && media == "" {
		return nil, apperr.New(apperr.Validation, "post body cannot be empty")
	}
	return s.store.UpdatePost(ctx, postID, func(p *models.Post) error {
		p.Body = body
		p.Media = media
		return nil
	})
}

// DeletePost removes the post, every comment under it, and the post key from
// the author's postIds. The cascade runs before the ownership removal so no
// comment outlives a consistent end state.
func (s *Service) DeletePost(ctx context.Context, requesterID, postID string) (*models.Post, error) {
	requester, err := s.store.User(ctx, requesterID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown requester identity")
	}
	if err != nil {
		return nil, err
	}
	if !slices.Contains(requester.PostIDs, postID) {
		return nil, apperr.New(apperr.Forbidden, "not the author of this post")
	}

	removed, err := s.store.DeleteCommentsByParent(ctx, postID)
	if err != nil {
		return nil, err
	}
	post, err := s.store.DeletePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateUser(ctx, requester.ID, func(u *models.User) error {
		u.PostIDs = removeID(u.PostIDs, postID)
		return nil
	}); err != nil {
		return nil, err
	}
	s.log.Info("post deleted", "post", postID, "cascadedComments", removed)
	return post, nil
}

// CreateComment inserts a comment under a live post, appends its key to the
// author's commentIds and increments the parent's comment counter.
func (s *Service) CreateComment(ctx context.Context, authorID, parentID, body, media string) (*models.Comment, error) {
	author, err := s.store.User(ctx, authorID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown author identity")
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" && media == "" {
		return nil, apperr.New(apperr.Validation, "comment body cannot be empty")
	}
	if _, err := s.store.Post(ctx, parentID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        store.NewID(),
		ParentID:  parentID,
		Body:      body,
		Author:    author.Username,
		Media:     media,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateUser(ctx, author.ID, func(u *models.User) error {
		u.CommentIDs = append(u.CommentIDs, comment.ID)
		return nil
	}); err != nil {
		if _, derr := s.store.DeleteComment(ctx, comment.ID); derr != nil && !apperr.Is(derr, apperr.NotFound) {
			s.log.Error("orphaned comment after failed ownership append", "comment", comment.ID, "err", derr)
		}
		return nil, err
	}

	if _, err := s.counters.AdjustCommentCount(ctx, parentID, 1); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			// parent deleted concurrently; the cascade owns cleanup
			return comment, nil
		}
		// unwind so the comment never exists uncounted
		if _, derr := s.store.DeleteComment(ctx, comment.ID); derr != nil && !apperr.Is(derr, apperr.NotFound) {
			s.log.Error("uncounted comment left behind", "comment", comment.ID, "err", derr)
		}
		if _, uerr := s.store.UpdateUser(ctx, author.ID, func(u *models.User) error {
			u.CommentIDs = removeID(u.CommentIDs, comment.ID)
			return nil
		}); uerr != nil {
			s.log.Error("comment ownership compensation failed", "comment", comment.ID, "err", uerr)
		}
		return nil, err
	}
	return comment, nil
}

// EditComment updates a comment's body. Authorship is checked against the
// requester's commentIds.
func (s *Service) EditComment(ctx context.Context, requesterID, commentID, body, media string) (*models.Comment, error) {
	requester, err := s.store.User(ctx, requesterID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown requester identity")
	}
	if err != nil {
		return nil, err
	}
	if !slices.Contains(requester.CommentIDs, commentID) {
		return nil, apperr.New(apperr.Forbidden, "not the author of this comment")
	}
	if strings.TrimSpace(body) == "" && media == "" {
		return nil, apperr.New(apperr.Validation, "comment body cannot be empty")
	}
	return s.store.UpdateComment(ctx, commentID, func(c *models.Comment) error {
		c.Body = body
		c.Media = media
		return nil
	})
}

// DeleteComment removes the comment, its key from the author's commentIds,
// and decrements the parent's comment counter. A concurrently deleted
// parent makes the decrement a no-op, not an error.
func (s *Service) DeleteComment(ctx context.Context, requesterID, commentID string) (*models.Comment, error) {
	requester, err := s.store.User(ctx, requesterID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown requester identity")
	}
	if err != nil {
		return nil, err
	}
	if !slices.Contains(requester.CommentIDs, commentID) {
		return nil, apperr.New(apperr.Forbidden, "not the author of this comment")
	}

	comment, err := s.store.DeleteComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateUser(ctx, requester.ID, func(u *models.User) error {
		u.CommentIDs = removeID(u.CommentIDs, commentID)
		return nil
	}); err != nil {
		return nil, err
	}
	if _, err := s.counters.AdjustCommentCount(ctx, comment.ParentID, -1); err != nil && !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}
	return comment, nil
}

// Post returns a single post by key.
func (s *Service) Post(ctx context.Context, id string) (*models.Post, error) {
	return s.store.Post(ctx, id)
}

// Comments returns one page of a post's comments, newest first. Page is
// 1-based; a page past the end is empty, not an error.
func (s *Service) Comments(ctx context.Context, parentID string, page int) ([]models.Comment, error) {
	if page < 1 {
		return nil, apperr.New(apperr.Validation, "page must be >= 1")
	}
	all, err := s.store.CommentsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	sortCommentsLatest(all)
	return paginate(all, page, CommentsPerPage), nil
}

// PostsByIDs returns the live posts among ids, newest first. Dead keys are
// omitted.
func (s *Service) PostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	posts, err := s.store.PostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt != posts[j].CreatedAt {
			return posts[i].CreatedAt > posts[j].CreatedAt
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

// CommentsByIDs returns the live comments among ids, newest first. Dead keys
// are omitted.
func (s *Service) CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	comments, err := s.store.CommentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortCommentsLatest(comments)
	return comments, nil
}

func sortCommentsLatest(comments []models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt != comments[j].CreatedAt {
			return comments[i].CreatedAt > comments[j].CreatedAt
		}
		return comments[i].ID > comments[j].ID
	})
}

func paginate(comments []models.Comment, page, size int) []models.Comment {
	skip := (page - 1) * size
	if skip >= len(comments) {
		return []models.Comment{}
	}
	end := skip + size
	if end > len(comments) {
		end = len(comments)
	}
	return comments[skip:end]
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
