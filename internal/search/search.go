package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// query is issued.
const DefaultDebounce = 300 * time.Millisecond

// searcher is the slice of the API client the overlay consumes.
type searcher interface {
	SearchPosts(ctx context.Context, query string) ([]models.RawPost, error)
}

// enricher turns raw results into render-ready posts.
type enricher interface {
	Enrich(ctx context.Context, raw models.RawPost) models.Post
}

// View is the feed surface whose rendered set the overlay swaps.
type View interface {
	ShowSearchResults(posts []models.Post)
	ClearSearch()
}

// Overlay runs a debounced free-text search over a feed view. Results swap
// the rendered collection; the paginator's cursor is untouched underneath,
// and clearing the query reverts without a refetch.
//
// Overlay results are not subscribed to the event bus: mutations arriving
// while a search is active show up only after the query is cleared.
type Overlay struct {
	client   searcher
	enricher enricher
	view     View
	logger   *logging.Logger
	debounce time.Duration
	timeout  time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewOverlay creates a search overlay for one feed view.
func NewOverlay(client searcher, e enricher, view View, debounce, timeout time.Duration, logger *logging.Logger) *Overlay {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Overlay{
		client:   client,
		enricher: e,
		view:     view,
		logger:   logger,
		debounce: debounce,
		timeout:  timeout,
	}
}

// SetQuery records the latest input text. A non-empty query fires after the
// debounce quiet period; an empty query clears the overlay immediately.
// Each call invalidates any earlier pending or in-flight query.
func (o *Overlay) SetQuery(input string) {
	query := Normalize(input)

	o.mu.Lock()
	o.gen++
	gen := o.gen
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}

	if query == "" {
		o.mu.Unlock()
		o.view.ClearSearch()
		return
	}

	o.timer = time.AfterFunc(o.debounce, func() {
		o.run(gen, query)
	})
	o.mu.Unlock()
}

func (o *Overlay) run(gen uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	raws, err := o.client.SearchPosts(ctx, query)
	if err != nil {
		// Search failures surface as an empty result set, nothing louder.
		o.logger.Warn("Search failed", logging.WithFields(map[string]interface{}{
			"query": query,
			"error": err.Error(),
		}))
		raws = nil
	}

	posts := make([]models.Post, 0, len(raws))
	for _, raw := range raws {
		posts = append(posts, o.enricher.Enrich(ctx, raw))
	}

	o.mu.Lock()
	stale := gen != o.gen
	o.mu.Unlock()
	if stale {
		return
	}

	o.view.ShowSearchResults(posts)
}

// Normalize canonicalizes a query for the case-insensitive backend search:
// trimmed, NFC-normalized, case-folded.
func Normalize(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(trimmed))
}
