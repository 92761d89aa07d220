// Package counter keeps the denormalized like and comment counters on Post
// records in sync. Adjustments go through the store's per-record
// read-modify-write, so two concurrent +1s on the same post both land.
package counter

import (
	"context"

	"chirp/apperr"
	"chirp/models"
	"chirp/store"
)

type Ledger struct {
	store store.Store
}

func NewLedger(st store.Store) *Ledger {
	return &Ledger{store: st}
}

// AdjustLikeCount applies delta (+1 or -1) to the post's like counter,
// flooring at zero. Returns apperr.NotFound if the post is absent.
func (l *Ledger) AdjustLikeCount(ctx context.Context, postID string, delta int) (*models.Post, error) {
	if delta != 1 && delta != -1 {
		return nil, apperr.Newf(apperr.Validation, "like count delta must be +1 or -1, got %d", delta)
	}
	return l.store.UpdatePost(ctx, postID, func(p *models.Post) error {
		p.AmtLikes += delta
		if p.AmtLikes < 0 {
			p.AmtLikes = 0
		}
		return nil
	})
}

// AdjustCommentCount applies delta (+1 or -1) to the post's comment counter,
// flooring at zero. Returns apperr.NotFound if the post is absent.
func (l *Ledger) AdjustCommentCount(ctx context.Context, postID string, delta int) (*models.Post, error) {
	if delta != 1 && delta != -1 {
		return nil, apperr.Newf(apperr.Validation, "comment count delta must be +1 or -1, got %d", delta)
	}
	return l.store.UpdatePost(ctx, postID, func(p *models.Post) error {
		p.AmtComments += delta
		if p.AmtComments < 0 {
			p.AmtComments = 0
		}
		return nil
	})
}
