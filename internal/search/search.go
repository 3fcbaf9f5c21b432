package search

import (
	"context"
	"time"
)

// Post is one unit of fetched social content, pre-annotation. ID is assigned
// by the source.
type Post struct {
	ID        int64
	Text      string
	CreatedAt time.Time
}

// Client finds recent posts matching a query. Implementations may return
// fewer than maxResults, including none.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Post, error)
}
