package feed

import (
	"context"

	"github.com/bme-bharat/communityfeed/internal/models"
	"github.com/bme-bharat/communityfeed/internal/reactions"
)

// Event-application callbacks. These satisfy the reconciler's Applier
// surface; they mutate the paginated collection only, never the search
// overlay (overlay results deliberately do not track live mutations).

// ApplyCreated enriches a newly created post and prepends it. Enrichment
// degrades field-by-field, so the post is inserted even when every
// sub-resolution fails.
func (c *Controller) ApplyCreated(ctx context.Context, raw models.RawPost) {
	post := c.enricher.Enrich(ctx, raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection.Prepend(post)
}

// ApplyUpdated enriches an updated post and replaces the matching entry.
// Updates for posts the view does not hold are ignored.
func (c *Controller) ApplyUpdated(ctx context.Context, raw models.RawPost) {
	c.mu.Lock()
	_, held := c.collection.Get(raw.ForumID)
	c.mu.Unlock()
	if !held {
		return
	}

	post := c.enricher.Enrich(ctx, raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection.Replace(raw.ForumID, post)
}

// ApplyDeleted removes the matching post.
func (c *Controller) ApplyDeleted(postID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection.Remove(postID)
}

// ApplyCommentDelta patches the comment count in place, clamped at zero.
// This is a direct field update; it never re-enriches.
func (c *Controller) ApplyCommentDelta(postID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection.Update(postID, func(p *models.Post) {
		p.CommentCount += delta
		if p.CommentCount < 0 {
			p.CommentCount = 0
		}
	})
}

// ApplyReaction converges this view's copy of a post to the broadcast final
// reaction kind.
func (c *Controller) ApplyReaction(postID string, kind models.Reaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection.Update(postID, func(p *models.Post) {
		reactions.Apply(p, kind)
	})
}

// ApplyReactionSummary replaces optimistic counts with the server's
// canonical aggregate.
func (c *Controller) ApplyReactionSummary(postID string, summary models.ReactionSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection.Update(postID, func(p *models.Post) {
		counts := make(map[models.Reaction]int, len(summary.Counts))
		for k, v := range summary.Counts {
			counts[k] = v
		}
		p.ReactionsCount = counts
		p.TotalReactions = summary.Total
		p.UserReaction = summary.UserReaction
		if p.UserReaction == "" {
			p.UserReaction = models.ReactionNone
		}
	})
}
