package resolver

import (
	"context"

	"github.com/bme-bharat/communityfeed/internal/models"
)

// Resolver provides the per-post derived data the enrichment pipeline needs:
// temporary media URLs and interaction aggregates.
type Resolver interface {
	// MediaURL resolves a stored content key to a time-limited access URL.
	MediaURL(ctx context.Context, contentKey string) (string, error)
	// CommentCount returns the current comment count for a post.
	CommentCount(ctx context.Context, postID string) (int, error)
	// ReactionSummary returns the canonical reaction aggregate for a post.
	ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error)
}

// commandClient is the slice of the API client the resolver consumes.
type commandClient interface {
	SignedURL(ctx context.Context, contentKey string) (string, error)
	CommentCount(ctx context.Context, postID string) (int, error)
	ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error)
}

// APIResolver resolves everything through the backend command endpoint.
type APIResolver struct {
	client commandClient
}

// NewAPI creates a resolver backed by the command-dispatch client.
func NewAPI(client commandClient) *APIResolver {
	return &APIResolver{client: client}
}

func (r *APIResolver) MediaURL(ctx context.Context, contentKey string) (string, error) {
	return r.client.SignedURL(ctx, contentKey)
}

func (r *APIResolver) CommentCount(ctx context.Context, postID string) (int, error) {
	return r.client.CommentCount(ctx, postID)
}

func (r *APIResolver) ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error) {
	return r.client.ReactionSummary(ctx, postID)
}

var _ Resolver = (*APIResolver)(nil)
