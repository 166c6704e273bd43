package enrich

import (
	"context"
	"sync"

	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
	"github.com/bme-bharat/communityfeed/internal/resolver"
)

// Enricher turns raw post records into render-ready posts by resolving
// media URLs, the author avatar, and interaction aggregates. Sub-resolutions
// run concurrently and are joined before the post is returned; a failing
// sub-resolution degrades its own field and never discards the post.
type Enricher struct {
	resolver resolver.Resolver
	logger   *logging.Logger
}

// New creates an enricher over the given resolver.
func New(r resolver.Resolver, logger *logging.Logger) *Enricher {
	return &Enricher{resolver: r, logger: logger}
}

// Enrich assembles a Post from a raw record. It is idempotent: re-running it
// on an unchanged record yields structurally identical output, modulo
// freshly issued URL tokens.
func (e *Enricher) Enrich(ctx context.Context, raw models.RawPost) models.Post {
	post := models.Post{
		RawPost:        raw,
		ReactionsCount: make(map[models.Reaction]int),
		UserReaction:   models.ReactionNone,
	}

	var wg sync.WaitGroup

	if raw.MediaKey != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := e.resolver.MediaURL(ctx, raw.MediaKey)
			if err != nil {
				e.warn("media url", raw.ForumID, err)
				return
			}
			post.MediaURL = url
		}()
	}

	if raw.ThumbnailKey != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := e.resolver.MediaURL(ctx, raw.ThumbnailKey)
			if err != nil {
				e.warn("thumbnail url", raw.ForumID, err)
				return
			}
			post.ThumbnailURL = url
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		post.Avatar = e.resolveAvatar(ctx, raw.Author)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		summary, err := e.resolver.ReactionSummary(ctx, raw.ForumID)
		if err != nil {
			e.warn("reaction summary", raw.ForumID, err)
			return
		}
		post.ReactionsCount = summary.Counts
		post.TotalReactions = summary.Total
		post.UserReaction = summary.UserReaction
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		count, err := e.resolver.CommentCount(ctx, raw.ForumID)
		if err != nil {
			e.warn("comment count", raw.ForumID, err)
			return
		}
		post.CommentCount = count
	}()

	wg.Wait()

	if post.ReactionsCount == nil {
		post.ReactionsCount = make(map[models.Reaction]int)
	}
	if post.UserReaction == "" {
		post.UserReaction = models.ReactionNone
	}
	return post
}

// resolveAvatar resolves the author's avatar image, falling back to a
// synthesized initials avatar when no key exists or resolution fails.
func (e *Enricher) resolveAvatar(ctx context.Context, author models.Author) models.Avatar {
	if author.AvatarKey == "" {
		return FallbackAvatar(author.Name)
	}

	url, err := e.resolver.MediaURL(ctx, author.AvatarKey)
	if err != nil {
		e.warn("avatar url", author.ID, err)
		return FallbackAvatar(author.Name)
	}
	return models.Avatar{URL: url}
}

func (e *Enricher) warn(field, id string, err error) {
	e.logger.Warn("Enrichment sub-resolution failed", logging.WithFields(map[string]interface{}{
		"field": field,
		"id":    id,
		"error": err.Error(),
	}))
}
