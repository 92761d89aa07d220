// Package feed assembles ranked, offset-paginated post pages under four
// policies. Every policy induces a deterministic total order (final
// tie-break is key descending), so a page request with no interleaved
// mutations is reproducible. Concurrent mutation between page requests may
// shift an item across a page boundary; that is the documented weakness of
// offset pagination here, not a correctness bug.
package feed

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"chirp/apperr"
	"chirp/models"
	"chirp/social"
	"chirp/store"
)

// PostsPerPage is the default page size for post listings.
const PostsPerPage = 10

type Assembler struct {
	store store.Store
	graph *social.Graph
	log   *slog.Logger
}

func NewAssembler(st store.Store, graph *social.Graph, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{store: st, graph: graph, log: log}
}

// Posts returns one page of the feed for the given filter. viewerID may be
// empty except for FOLLOWING, which requires an authenticated viewer. Page
// is 1-based; pageSize <= 0 falls back to PostsPerPage. A page past the end
// is empty, not an error.
func (a *Assembler) Posts(ctx context.Context, viewerID string, filter models.FeedFilter, page, pageSize int) ([]models.Post, error) {
	if page < 1 {
		return nil, apperr.New(apperr.Validation, "page must be >= 1")
	}
	if pageSize <= 0 {
		pageSize = PostsPerPage
	}

	var authors []string
	if filter == models.FilterFollowing {
		if viewerID == "" {
			return nil, apperr.New(apperr.Unauthenticated, "following feed requires a signed-in viewer")
		}
		followedIDs, err := a.graph.Following(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if len(followedIDs) == 0 {
			return []models.Post{}, nil
		}
		followed, err := a.store.UsersByIDs(ctx, followedIDs)
		if err != nil {
			return nil, err
		}
		authors = make([]string, 0, len(followed))
		for _, u := range followed {
			authors = append(authors, u.Username)
		}
	}

	posts, err := a.store.PostsByAuthors(ctx, authors)
	if err != nil {
		return nil, err
	}

	switch filter {
	case models.FilterLatest, models.FilterFollowing:
		sort.Slice(posts, func(i, j int) bool { return latestLess(&posts[i], &posts[j]) })
	case models.FilterPopular:
		sort.Slice(posts, func(i, j int) bool {
			if posts[i].AmtLikes != posts[j].AmtLikes {
				return posts[i].AmtLikes > posts[j].AmtLikes
			}
			return latestLess(&posts[i], &posts[j])
		})
	case models.FilterControversial:
		sort.Slice(posts, func(i, j int) bool {
			si, sj := controversyScore(&posts[i]), controversyScore(&posts[j])
			if si != sj {
				return si > sj
			}
			return latestLess(&posts[i], &posts[j])
		})
	default:
		return nil, apperr.Newf(apperr.Validation, "unknown feed filter %q", filter)
	}

	skip := (page - 1) * pageSize
	if skip >= len(posts) {
		return []models.Post{}, nil
	}
	end := skip + pageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[skip:end], nil
}

// latestLess orders newest first, key descending on equal timestamps.
func latestLess(a, b *models.Post) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID > b.ID
}

// controversyScore is magnitude^balance: magnitude is total engagement,
// balance is the min/max ratio of likes to comments. A post debated on both
// axes outranks a one-sided post of the same volume; zero engagement scores
// zero, pure one-sided engagement scores a flat 1.
func controversyScore(p *models.Post) float64 {
	likes := float64(p.AmtLikes)
	comments := float64(p.AmtComments)
	if likes == 0 && comments == 0 {
		return 0
	}
	magnitude := likes + comments
	balance := math.Min(likes, comments) / math.Max(likes, comments)
	return math.Pow(magnitude, balance)
}
