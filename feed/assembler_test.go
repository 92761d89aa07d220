package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/apperr"
	"chirp/models"
	"chirp/social"
	"chirp/store"
	"chirp/store/memstore"
)

func newAssembler(t *testing.T) (*Assembler, *memstore.Store, *social.Graph) {
	t.Helper()
	s := memstore.New()
	g := social.NewGraph(s, nil)
	return NewAssembler(s, g, nil), s, g
}

func seedUser(t *testing.T, s *memstore.Store, username string) *models.User {
	t.Helper()
	u := &models.User{ID: store.NewID(), Username: username}
	require.NoError(t, s.InsertUser(context.Background(), u))
	return u
}

func seedPost(t *testing.T, s *memstore.Store, id, author string, createdAt int64, likes, comments int) {
	t.Helper()
	require.NoError(t, s.InsertPost(context.Background(), &models.Post{
		ID:          id,
		Author:      author,
		Body:        "post " + id,
		CreatedAt:   createdAt,
		AmtLikes:    likes,
		AmtComments: comments,
	}))
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

// Posts at t1<t2<t3, page size 2: page 1 is [t3,t2], page 2 is [t1],
// page 3 is empty.
func TestLatestPaginationTotalOrder(t *testing.T) {
	a, s, _ := newAssembler(t)
	ctx := context.Background()

	seedPost(t, s, "p1", "alice", 100, 0, 0)
	seedPost(t, s, "p2", "alice", 200, 0, 0)
	seedPost(t, s, "p3", "alice", 300, 0, 0)

	page1, err := a.Posts(ctx, "", models.FilterLatest, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2"}, ids(page1))

	page2, err := a.Posts(ctx, "", models.FilterLatest, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(page2))

	page3, err := a.Posts(ctx, "", models.FilterLatest, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestLatestTieBreaksByKeyDescending(t *testing.T) {
	a, s, _ := newAssembler(t)
	ctx := context.Background()

	seedPost(t, s, "a", "alice", 100, 0, 0)
	seedPost(t, s, "b", "alice", 100, 0, 0)
	seedPost(t, s, "c", "alice", 100, 0, 0)

	got, err := a.Posts(ctx, "", models.FilterLatest, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))
}

// Page 1 re-issued with no interleaved mutations is identical.
func TestPageIsReproducible(t *testing.T) {
	a, s, _ := newAssembler(t)
	ctx := context.Background()

	seedPost(t, s, "p1", "alice", 100, 3, 1)
	seedPost(t, s, "p2", "bob", 200, 3, 2)
	seedPost(t, s, "p3", "carol", 300, 1, 9)

	for _, filter := range []models.FeedFilter{
		models.FilterLatest, models.FilterPopular, models.FilterControversial,
	} {
		first, err := a.Posts(ctx, "", filter, 1, 10)
		require.NoError(t, err)
		second, err := a.Posts(ctx, "", filter, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(second), "filter %s", filter)
	}
}

func TestFollowingRequiresViewer(t *testing.T) {
	a, _, _ := newAssembler(t)

	_, err := a.Posts(context.Background(), "", models.FilterFollowing, 1, 10)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestFollowingRestrictsToFollowedAuthors(t *testing.T) {
	a, s, g := newAssembler(t)
	ctx := context.Background()

	viewer := seedUser(t, s, "viewer")
	seedUser(t, s, "followed")
	seedUser(t, s, "stranger")
	require.NoError(t, g.Follow(ctx, viewer.ID, "followed"))

	seedPost(t, s, "pf1", "followed", 100, 0, 0)
	seedPost(t, s, "pf2", "followed", 300, 0, 0)
	seedPost(t, s, "ps1", "stranger", 200, 0, 0)

	got, err := a.Posts(ctx, viewer.ID, models.FilterFollowing, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"pf2", "pf1"}, ids(got))
}

func TestFollowingNobodyIsEmpty(t *testing.T) {
	a, s, _ := newAssembler(t)
	ctx := context.Background()

	viewer := seedUser(t, s, "viewer")
	seedPost(t, s, "p1", "someone", 100, 0, 0)

	got, err := a.Posts(ctx, viewer.ID, models.FilterFollowing, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPopularOrdersByLikes(t *testing.T) {
	a, s, _ := newAssembler(t)
	ctx := context.Background()

	seedPost(t, s, "p1", "alice", 300, 2, 0)
	seedPost(t, s, "p2", "alice", 100, 9, 0)
	seedPost(t, s, "p3", "alice", 200, 2, 0)

	got, err := a.Posts(ctx, "", models.FilterPopular, 1, 10)
	require.NoError(t, err)
	// equal likes fall back to recency
	assert.Equal(t, []string{"p2", "p1", "p3"}, ids(got))
}

// Balanced high engagement outranks one-sided engagement of the same or
// larger volume; zero engagement sinks to the bottom.
func TestControversialPrefersBalancedEngagement(t *testing.T) {
	a, s, _ := newAssembler(t)
	ctx := context.Background()

	seedPost(t, s, "balanced", "alice", 100, 50, 45)
	seedPost(t, s, "onesided", "alice", 400, 200, 0)
	seedPost(t, s, "mild", "alice", 200, 5, 4)
	seedPost(t, s, "silent", "alice", 300, 0, 0)

	got, err := a.Posts(ctx, "", models.FilterControversial, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"balanced", "mild", "onesided", "silent"}, ids(got))
}

func TestControversyScoreMonotone(t *testing.T) {
	balanced := &models.Post{AmtLikes: 30, AmtComments: 30}
	skewed := &models.Post{AmtLikes: 55, AmtComments: 5}
	onesided := &models.Post{AmtLikes: 60, AmtComments: 0}
	silent := &models.Post{}

	assert.Greater(t, controversyScore(balanced), controversyScore(skewed))
	assert.Greater(t, controversyScore(skewed), controversyScore(onesided))
	assert.Greater(t, controversyScore(onesided), controversyScore(silent))
}

func TestInvalidPage(t *testing.T) {
	a, _, _ := newAssembler(t)

	_, err := a.Posts(context.Background(), "", models.FilterLatest, 0, 10)
	assert.True(t, apperr.Is(err, apperr.Validation))
}
