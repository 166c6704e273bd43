package resolver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bme-bharat/communityfeed/internal/cache"
	"github.com/bme-bharat/communityfeed/internal/models"
)

const (
	urlKeyPrefix     = "url:"
	commentKeyPrefix = "comments:"
)

// Cached wraps a resolver with a TTL cache. Signed URLs are cached slightly
// shorter than their server-side lifetime so a consumer never receives an
// already-expired URL. Reaction summaries are intentionally never cached:
// they are the convergence source for optimistic updates.
type Cached struct {
	inner      Resolver
	cache      cache.Cache
	urlTTL     time.Duration
	commentTTL time.Duration
}

// NewCached builds the caching decorator. urlTTL should be the signed-URL
// lifetime minus a safety margin.
func NewCached(inner Resolver, c cache.Cache, urlTTL, commentTTL time.Duration) *Cached {
	return &Cached{
		inner:      inner,
		cache:      c,
		urlTTL:     urlTTL,
		commentTTL: commentTTL,
	}
}

func (r *Cached) MediaURL(ctx context.Context, contentKey string) (string, error) {
	key := urlKeyPrefix + contentKey
	if v, ok := r.cache.Get(key); ok {
		if url, ok := v.(string); ok && url != "" {
			return url, nil
		}
	}

	url, err := r.inner.MediaURL(ctx, contentKey)
	if err != nil {
		return "", err
	}
	r.cache.SetWithTTL(key, url, r.urlTTL)
	return url, nil
}

func (r *Cached) CommentCount(ctx context.Context, postID string) (int, error) {
	key := commentKeyPrefix + postID
	if v, ok := r.cache.Get(key); ok {
		if n, ok := asInt(v); ok {
			return n, nil
		}
	}

	n, err := r.inner.CommentCount(ctx, postID)
	if err != nil {
		return 0, err
	}
	r.cache.SetWithTTL(key, n, r.commentTTL)
	return n, nil
}

func (r *Cached) ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error) {
	return r.inner.ReactionSummary(ctx, postID)
}

// InvalidateComments drops the cached comment count for a post, used when a
// comment event patches the rendered count directly.
func (r *Cached) InvalidateComments(postID string) {
	r.cache.Delete(commentKeyPrefix + postID)
}

// asInt tolerates the json round-trip some cache backends apply to numbers.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

var _ Resolver = (*Cached)(nil)
