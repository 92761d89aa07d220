// Package social manages the follow relation. The relation is stored twice,
// on both user records; Follow and Unfollow apply the follower side first
// and compensate it if the target side cannot be applied, so no
// half-relation survives past the call boundary.
package social

import (
	"context"
	"log/slog"
	"slices"

	"chirp/apperr"
	"chirp/models"
	"chirp/store"
)

type Graph struct {
	store store.Store
	log   *slog.Logger
}

func NewGraph(st store.Store, log *slog.Logger) *Graph {
	if log == nil {
		log = slog.Default()
	}
	return &Graph{store: st, log: log}
}

// Follow makes followerID follow the user named targetUsername. Following an
// already-followed user is a no-op success.
func (g *Graph) Follow(ctx context.Context, followerID, targetUsername string) error {
	follower, err := g.store.User(ctx, followerID)
	if err != nil {
		return err
	}
	target, err := g.store.UserByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if follower.ID == target.ID {
		return apperr.New(apperr.Validation, "cannot follow yourself")
	}

	added := false
	_, err = g.store.UpdateUser(ctx, follower.ID, func(u *models.User) error {
		added = !slices.Contains(u.FollowingIDs, target.ID)
		if added {
			u.FollowingIDs = append(u.FollowingIDs, target.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Apply the reverse edge even when the forward edge already existed, so
	// a previously interrupted follow is healed.
	_, err = g.store.UpdateUser(ctx, target.ID, func(u *models.User) error {
		if !slices.Contains(u.FollowerIDs, follower.ID) {
			u.FollowerIDs = append(u.FollowerIDs, follower.ID)
		}
		return nil
	})
	if err != nil && added {
		if _, cerr := g.store.UpdateUser(ctx, follower.ID, func(u *models.User) error {
			u.FollowingIDs = removeID(u.FollowingIDs, target.ID)
			return nil
		}); cerr != nil {
			g.log.Error("follow compensation failed",
				"follower", follower.ID, "target", target.ID, "err", cerr)
		}
	}
	return err
}

// Unfollow removes the relation. Removing an absent relation is a no-op
// success, not an error.
func (g *Graph) Unfollow(ctx context.Context, followerID, targetUsername string) error {
	follower, err := g.store.User(ctx, followerID)
	if err != nil {
		return err
	}
	target, err := g.store.UserByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if follower.ID == target.ID {
		return apperr.New(apperr.Validation, "cannot unfollow yourself")
	}

	removed := false
	_, err = g.store.UpdateUser(ctx, follower.ID, func(u *models.User) error {
		removed = slices.Contains(u.FollowingIDs, target.ID)
		u.FollowingIDs = removeID(u.FollowingIDs, target.ID)
		return nil
	})
	if err != nil {
		return err
	}

	_, err = g.store.UpdateUser(ctx, target.ID, func(u *models.User) error {
		u.FollowerIDs = removeID(u.FollowerIDs, follower.ID)
		return nil
	})
	if err != nil && removed {
		if _, cerr := g.store.UpdateUser(ctx, follower.ID, func(u *models.User) error {
			if !slices.Contains(u.FollowingIDs, target.ID) {
				u.FollowingIDs = append(u.FollowingIDs, target.ID)
			}
			return nil
		}); cerr != nil {
			g.log.Error("unfollow compensation failed",
				"follower", follower.ID, "target", target.ID, "err", cerr)
		}
	}
	return err
}

// IsFollowing reports whether user a follows user b. Pure read.
func (g *Graph) IsFollowing(ctx context.Context, aID, bID string) (bool, error) {
	a, err := g.store.User(ctx, aID)
	if err != nil {
		return false, err
	}
	return slices.Contains(a.FollowingIDs, bID), nil
}

// Following returns the ids of the users followed by userID.
func (g *Graph) Following(ctx context.Context, userID string) ([]string, error) {
	u, err := g.store.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.FollowingIDs, nil
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
