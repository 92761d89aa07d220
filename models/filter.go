package models

import "fmt"

// FeedFilter selects the ranking policy for feed assembly.
type FeedFilter string

const (
	FilterLatest        FeedFilter = "LATEST"
	FilterFollowing     FeedFilter = "FOLLOWING"
	FilterPopular       FeedFilter = "POPULAR"
	FilterControversial FeedFilter = "CONTROVERSIAL"
)

// ParseFeedFilter maps the wire value to a FeedFilter. An empty value
// defaults to LATEST.
func ParseFeedFilter(s string) (FeedFilter, error) {
	switch FeedFilter(s) {
	case "":
		return FilterLatest, nil
	case FilterLatest, FilterFollowing, FilterPopular, FilterControversial:
		return FeedFilter(s), nil
	default:
		return "", fmt.Errorf("unknown feed filter %q", s)
	}
}
