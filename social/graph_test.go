package social

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/apperr"
	"chirp/models"
	"chirp/store"
	"chirp/store/memstore"
)

func seedUser(t *testing.T, s *memstore.Store, username string) *models.User {
	t.Helper()
	u := &models.User{ID: store.NewID(), Username: username}
	require.NoError(t, s.InsertUser(context.Background(), u))
	return u
}

func TestFollowAndIsFollowing(t *testing.T) {
	s := memstore.New()
	g := NewGraph(s, nil)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	require.NoError(t, g.Follow(ctx, alice.ID, "bob"))

	following, err := g.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	reverse, err := g.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	bobRec, err := s.User(ctx, bob.ID)
	require.NoError(t, err)
	assert.Contains(t, bobRec.FollowerIDs, alice.ID)
}

func TestFollowIdempotent(t *testing.T) {
	s := memstore.New()
	g := NewGraph(s, nil)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	require.NoError(t, g.Follow(ctx, alice.ID, "bob"))
	require.NoError(t, g.Follow(ctx, alice.ID, "bob"))

	aliceRec, err := s.User(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, aliceRec.FollowingIDs)

	bobRec, err := s.User(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, bobRec.FollowerIDs)
}

func TestFollowSelfRejected(t *testing.T) {
	s := memstore.New()
	g := NewGraph(s, nil)
	alice := seedUser(t, s, "alice")

	err := g.Follow(context.Background(), alice.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestFollowUnknownUsers(t *testing.T) {
	s := memstore.New()
	g := NewGraph(s, nil)
	ctx := context.Background()
	alice := seedUser(t, s, "alice")

	err := g.Follow(ctx, alice.ID, "ghost")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = g.Follow(ctx, "ghost-id", "alice")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUnfollowInverseAndNoop(t *testing.T) {
	s := memstore.New()
	g := NewGraph(s, nil)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	// removing an absent relation succeeds
	require.NoError(t, g.Unfollow(ctx, alice.ID, "bob"))

	require.NoError(t, g.Follow(ctx, alice.ID, "bob"))
	require.NoError(t, g.Unfollow(ctx, alice.ID, "bob"))

	aliceRec, err := s.User(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceRec.FollowingIDs)

	bobRec, err := s.User(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobRec.FollowerIDs)
}

// After any sequence of follow/unfollow calls, b in followingIds(a) must
// hold exactly when a is in followerIds(b).
func TestSymmetryInvariantUnderRandomOps(t *testing.T) {
	s := memstore.New()
	g := NewGraph(s, nil)
	ctx := context.Background()

	users := []*models.User{
		seedUser(t, s, "u0"),
		seedUser(t, s, "u1"),
		seedUser(t, s, "u2"),
		seedUser(t, s, "u3"),
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := users[rng.Intn(len(users))]
		b := users[rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		if rng.Intn(2) == 0 {
			require.NoError(t, g.Follow(ctx, a.ID, b.Username))
		} else {
			require.NoError(t, g.Unfollow(ctx, a.ID, b.Username))
		}
	}

	records := make(map[string]*models.User)
	for _, u := range users {
		rec, err := s.User(ctx, u.ID)
		require.NoError(t, err)
		records[u.ID] = rec
	}
	for _, a := range users {
		for _, b := range users {
			follows := contains(records[a.ID].FollowingIDs, b.ID)
			followed := contains(records[b.ID].FollowerIDs, a.ID)
			assert.Equal(t, follows, followed, "asymmetric relation %s -> %s", a.Username, b.Username)
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
