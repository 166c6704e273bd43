package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/bme-bharat/communityfeed/internal/api"
	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
)

// Kind selects which feed a controller drives.
type Kind string

const (
	KindAll      Kind = "all"
	KindLatest   Kind = "latest"
	KindTrending Kind = "trending"
)

// Config parameterizes a controller. The feed kind is the only variability
// axis between the All/Latest/Trending views.
type Config struct {
	Kind      Kind
	PageLimit int
}

// lister is the slice of the API client the controller consumes.
type lister interface {
	ListPosts(ctx context.Context, feedType string, limit int, cursor string) (*api.Page, error)
}

// enricher turns raw records into render-ready posts.
type enricher interface {
	Enrich(ctx context.Context, raw models.RawPost) models.Post
}

// Controller owns one feed view: cursor pagination, the rendered collection,
// the search overlay, and the event-application callbacks. All state is
// guarded by a single mutex; asynchronous callbacks mutate through it rather
// than capturing snapshots, which closes the read-modify-write races a
// snapshot-based design has.
type Controller struct {
	cfg      Config
	client   lister
	enricher enricher
	logger   *logging.Logger

	mu         sync.Mutex
	collection *Collection
	cursor     string
	hasMore    bool
	loading    bool
	refreshing bool
	seq        uint64

	overlay       []models.Post
	overlayActive bool
}

// NewController creates a controller for one feed kind.
func NewController(cfg Config, client lister, e enricher, logger *logging.Logger) *Controller {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 10
	}
	return &Controller{
		cfg:        cfg,
		client:     client,
		enricher:   e,
		logger:     logger,
		collection: NewCollection(),
		hasMore:    true,
	}
}

// Load performs the initial page fetch. Failures surface to the caller so
// the view can render an error state.
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx, true)
}

// Refresh resets the cursor and, on success, replaces the collection with
// exactly the returned first page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx, true)
}

// LoadMore fetches the next page. Failures are logged and swallowed;
// hasMore is left unchanged so a later scroll can retry. Transient transport
// failures log quietly, everything else gets a warning.
func (c *Controller) LoadMore(ctx context.Context) {
	if err := c.fetch(ctx, false); err != nil {
		fields := logging.WithFields(map[string]interface{}{
			"kind":  string(c.cfg.Kind),
			"error": err.Error(),
		})
		if api.Retriable(err) {
			c.logger.Debug("Load more failed, next scroll retries", fields)
			return
		}
		c.logger.Warn("Load more failed", fields)
	}
}

// fetch drives one page retrieval. A fetch of the same type already in
// flight makes the call a no-op, but a refresh preempts an in-flight page
// load: it bumps the sequence number so the slower load's response is
// discarded instead of landing on top of the replaced collection. Each
// attempt gets a new sequence number; a response whose sequence predates
// the latest attempt is discarded rather than applied.
func (c *Controller) fetch(ctx context.Context, refresh bool) error {
	c.mu.Lock()
	if refresh {
		if c.refreshing {
			c.mu.Unlock()
			return nil
		}
		c.refreshing = true
	} else {
		if c.loading || c.refreshing || !c.hasMore {
			c.mu.Unlock()
			return nil
		}
		c.loading = true
	}

	c.seq++
	seq := c.seq
	cursor := c.cursor
	if refresh {
		cursor = ""
	}
	c.mu.Unlock()

	page, err := c.client.ListPosts(ctx, string(c.cfg.Kind), c.cfg.PageLimit, cursor)
	if err != nil {
		c.mu.Lock()
		c.clearInFlight(refresh)
		c.mu.Unlock()
		return fmt.Errorf("fetch %s feed: %w", c.cfg.Kind, err)
	}

	enriched := make([]models.Post, 0, len(page.Posts))
	for _, raw := range page.Posts {
		enriched = append(enriched, c.enricher.Enrich(ctx, raw))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearInFlight(refresh)

	if seq != c.seq {
		c.logger.Debug("Discarding stale page response", logging.WithFields(map[string]interface{}{
			"kind":   string(c.cfg.Kind),
			"seq":    seq,
			"latest": c.seq,
		}))
		return nil
	}

	if refresh {
		c.collection.ReplaceAll(enriched)
		c.cursor = page.Cursor
		c.hasMore = page.Cursor != ""
		return nil
	}

	if len(page.Posts) == 0 {
		c.hasMore = false
		return nil
	}

	c.collection.Append(enriched)
	c.cursor = page.Cursor
	if page.Cursor == "" {
		c.hasMore = false
	}
	return nil
}

// clearInFlight drops only the flag this fetch set: a preempted load must
// not clear the refresh that overtook it. Caller holds c.mu.
func (c *Controller) clearInFlight(refresh bool) {
	if refresh {
		c.refreshing = false
	} else {
		c.loading = false
	}
}

// Posts returns what the view should render: the search overlay when one is
// active, the paginated collection otherwise.
func (c *Controller) Posts() []models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overlayActive {
		out := make([]models.Post, len(c.overlay))
		copy(out, c.overlay)
		return out
	}
	return c.collection.Posts()
}

// Get returns a copy of one post from the paginated collection.
func (c *Controller) Get(id string) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection.Get(id)
}

// HasMore reports whether further pages may exist.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Loading reports whether a page fetch or refresh is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading || c.refreshing
}

// ShowSearchResults swaps the rendered set to the given results. The
// paginated collection and its cursor are untouched underneath.
func (c *Controller) ShowSearchResults(posts []models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay = posts
	c.overlayActive = true
}

// ClearSearch reverts the view to the paginated collection without
// refetching anything.
func (c *Controller) ClearSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay = nil
	c.overlayActive = false
}

// UpdatePost applies fn to one post in the paginated collection. Implements
// the reaction engine's view surface.
func (c *Controller) UpdatePost(id string, fn func(*models.Post)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection.Update(id, fn)
}
