// Package engagement implements like and unlike. Idempotency hangs off the
// user's liked-set: the set mutation decides whether a counter adjustment
// happens at all, and a failed adjustment rolls the set back so the counter
// and the set never drift apart past the call boundary.
package engagement

import (
	"context"
	"log/slog"
	"slices"

	"chirp/apperr"
	"chirp/counter"
	"chirp/models"
	"chirp/store"
)

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

// Like records userID's like on postID and returns the post's current state.
// Liking an already-liked post changes nothing and succeeds.
func (s *Service) Like(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.store.Post(ctx, postID)
	if err != nil {
		return nil, err
	}

	added := false
	_, err = s.store.UpdateUser(ctx, userID, func(u *models.User) error {
		added = !slices.Contains(u.LikedPostIDs, postID)
		if added {
			u.LikedPostIDs = append(u.LikedPostIDs, postID)
		}
		return nil
	})
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown user identity")
	}
	if err != nil {
		return nil, err
	}
	if !added {
		return post, nil
	}

	updated, err := s.counters.AdjustLikeCount(ctx, postID, 1)
	if err != nil {
		if _, cerr := s.store.UpdateUser(ctx, userID, func(u *models.User) error {
			u.LikedPostIDs = removeID(u.LikedPostIDs, postID)
			return nil
		}); cerr != nil {
			s.log.Error("like compensation failed", "user", userID, "post", postID, "err", cerr)
		}
		return nil, err
	}
	return updated, nil
}

// Unlike removes userID's like from postID and returns the post's current
// state. Removing an absent like changes nothing and succeeds.
func (s *Service) Unlike(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.store.Post(ctx, postID)
	if err != nil {
		return nil, err
	}

	removed := false
	_, err = s.store.UpdateUser(ctx, userID, func(u *models.User) error {
		removed = slices.Contains(u.LikedPostIDs, postID)
		u.LikedPostIDs = removeID(u.LikedPostIDs, postID)
		return nil
	})
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "unknown user identity")
	}
	if err != nil {
		return nil, err
	}
	if !removed {
		return post, nil
	}

	updated, err := s.counters.AdjustLikeCount(ctx, postID, -1)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			// post deleted between the existence check and the decrement;
			// the dead key is gone from the liked-set, which is the state
			// the cascade leaves anyway
			return post, nil
		}
		if _, cerr := s.store.UpdateUser(ctx, userID, func(u *models.User) error {
			if !slices.Contains(u.LikedPostIDs, postID) {
				u.LikedPostIDs = append(u.LikedPostIDs, postID)
			}
			return nil
		}); cerr != nil {
			s.log.Error("unlike compensation failed", "user", userID, "post", postID, "err", cerr)
		}
		return nil, err
	}
	return updated, nil
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
