package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bme-bharat/communityfeed/internal/models"
)

// Command names understood by the dispatch endpoint.
const (
	cmdListPosts       = "getForumPosts"
	cmdSearchPosts     = "searchForumPosts"
	cmdReactionSummary = "getForumReactionsCount"
	cmdUpsertReaction  = "putForumReaction"
	cmdCommentCount    = "getForumCommentsCount"
	cmdSignedURL       = "getSignedUrl"
)

// Page is one page of raw posts plus the cursor for the next page. An empty
// cursor means the feed is exhausted.
type Page struct {
	Posts  []models.RawPost
	Cursor string
}

// ListPosts fetches one page of a feed. feedType selects the feed kind
// (all, latest, trending); cursor is the opaque token from the previous page
// or empty for the first page.
func (c *Client) ListPosts(ctx context.Context, feedType string, limit int, cursor string) (*Page, error) {
	params := map[string]interface{}{
		"type":  feedType,
		"limit": limit,
	}
	if cursor != "" {
		params["lastEvaluatedKey"] = cursor
	}

	envelope, err := c.Do(ctx, cmdListPosts, params)
	if err != nil {
		return nil, err
	}

	var posts []models.RawPost
	if err := json.Unmarshal(envelope.Response, &posts); err != nil {
		return nil, fmt.Errorf("decode post page: %w", err)
	}

	return &Page{Posts: posts, Cursor: envelope.LastEvaluatedKey}, nil
}

// SearchPosts runs a one-shot free-text search over the feed.
func (c *Client) SearchPosts(ctx context.Context, query string) ([]models.RawPost, error) {
	envelope, err := c.Do(ctx, cmdSearchPosts, map[string]interface{}{
		"query": query,
	})
	if err != nil {
		return nil, err
	}

	var posts []models.RawPost
	if err := json.Unmarshal(envelope.Response, &posts); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return posts, nil
}

// ReactionSummary returns the per-kind counts, the caller's own reaction,
// and the total for one post.
func (c *Client) ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error) {
	envelope, err := c.Do(ctx, cmdReactionSummary, map[string]interface{}{
		"forum_id": postID,
		"user_id":  c.userID,
	})
	if err != nil {
		return nil, err
	}

	var summary models.ReactionSummary
	if err := json.Unmarshal(envelope.Response, &summary); err != nil {
		return nil, fmt.Errorf("decode reaction summary: %w", err)
	}
	if summary.Counts == nil {
		summary.Counts = make(map[models.Reaction]int)
	}
	return &summary, nil
}

// UpsertReaction sets the caller's reaction on a post. ReactionNone clears it.
func (c *Client) UpsertReaction(ctx context.Context, postID string, kind models.Reaction) error {
	_, err := c.Do(ctx, cmdUpsertReaction, map[string]interface{}{
		"forum_id": postID,
		"user_id":  c.userID,
		"reaction": string(kind),
	})
	return err
}

// CommentCount returns the current number of comments on a post.
func (c *Client) CommentCount(ctx context.Context, postID string) (int, error) {
	envelope, err := c.Do(ctx, cmdCommentCount, map[string]interface{}{
		"forum_id": postID,
	})
	if err != nil {
		return 0, err
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(envelope.Response, &payload); err != nil {
		return 0, fmt.Errorf("decode comment count: %w", err)
	}
	return payload.Count, nil
}

// SignedURL resolves a stored content key to a temporary access URL.
func (c *Client) SignedURL(ctx context.Context, contentKey string) (string, error) {
	envelope, err := c.Do(ctx, cmdSignedURL, map[string]interface{}{
		"content_key": contentKey,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(envelope.Response, &payload); err != nil {
		return "", fmt.Errorf("decode signed url: %w", err)
	}
	return payload.URL, nil
}
