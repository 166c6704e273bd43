package reactions

import (
	"context"
	"sync"
	"time"

	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
)

// Transition returns the target reaction for a selection: picking the
// current reaction again clears it, anything else switches to it.
func Transition(current, selected models.Reaction) models.Reaction {
	if current == selected {
		return models.ReactionNone
	}
	return selected
}

// Apply mutates a post's reaction state to the target kind, adjusting
// totalReactions and the per-kind counts. Decrements are floored at zero.
// Applying the post's current reaction is a no-op, which makes convergence
// broadcasts safe to replay onto the originating view.
func Apply(post *models.Post, target models.Reaction) {
	prev := post.UserReaction
	if prev == "" {
		prev = models.ReactionNone
	}
	if prev == target {
		return
	}
	if post.ReactionsCount == nil {
		post.ReactionsCount = make(map[models.Reaction]int)
	}

	switch {
	case prev == models.ReactionNone:
		post.TotalReactions++
		post.ReactionsCount[target]++
	case target == models.ReactionNone:
		if post.TotalReactions > 0 {
			post.TotalReactions--
		}
		if post.ReactionsCount[prev] > 0 {
			post.ReactionsCount[prev]--
		}
	default:
		if post.ReactionsCount[prev] > 0 {
			post.ReactionsCount[prev]--
		}
		post.ReactionsCount[target]++
	}

	post.UserReaction = target
}

// View is the rendered collection surface the engine mutates.
type View interface {
	UpdatePost(postID string, fn func(*models.Post)) bool
}

// Broadcaster carries convergence events to sibling views.
type Broadcaster interface {
	Publish(ev models.Event) error
}

// submitter is the slice of the API client the engine consumes.
type submitter interface {
	UpsertReaction(ctx context.Context, postID string, kind models.Reaction) error
	ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error)
}

// command captures one optimistic toggle so its network confirmation can be
// compensated exactly if the server rejects it.
type command struct {
	postID string
	prev   models.Reaction
	target models.Reaction
}

// Engine applies reaction toggles optimistically: the local mutation and the
// convergence broadcast happen synchronously, the network confirmation runs
// in the background. A failed confirmation applies the compensating delta
// and re-broadcasts; a successful one reconciles local counts against the
// server's canonical aggregate.
type Engine struct {
	client  submitter
	bus     Broadcaster
	logger  *logging.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

// NewEngine creates a reaction engine. timeout bounds each confirmation call.
func NewEngine(client submitter, bus Broadcaster, timeout time.Duration, logger *logging.Logger) *Engine {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Engine{
		client:  client,
		bus:     bus,
		logger:  logger,
		timeout: timeout,
	}
}

// Select toggles the given reaction kind on a post. It returns the resulting
// reaction and whether the post was found in the view. The local state is
// mutated before this function returns; confirmation is asynchronous.
func (e *Engine) Select(view View, postID string, kind models.Reaction) (models.Reaction, bool) {
	cmd := command{postID: postID}

	found := view.UpdatePost(postID, func(p *models.Post) {
		cmd.prev = p.UserReaction
		if cmd.prev == "" {
			cmd.prev = models.ReactionNone
		}
		cmd.target = Transition(cmd.prev, kind)
		Apply(p, cmd.target)
	})
	if !found {
		return models.ReactionNone, false
	}

	e.broadcast(postID, cmd.target)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.confirm(view, cmd)
	}()

	return cmd.target, true
}

// Wait blocks until all in-flight confirmations finish. Used on shutdown
// and in tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) confirm(view View, cmd command) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.client.UpsertReaction(ctx, cmd.postID, cmd.target); err != nil {
		e.logger.Warn("Reaction confirmation failed, compensating", logging.WithFields(map[string]interface{}{
			"post_id": cmd.postID,
			"target":  string(cmd.target),
			"error":   err.Error(),
		}))

		view.UpdatePost(cmd.postID, func(p *models.Post) {
			Apply(p, cmd.prev)
		})
		e.broadcast(cmd.postID, cmd.prev)
		return
	}

	summary, err := e.client.ReactionSummary(ctx, cmd.postID)
	if err != nil {
		// The upsert landed; local counts stay optimistic until the next
		// enrichment pass picks up the canonical aggregate.
		e.logger.Debug("Reaction aggregate fetch failed", logging.WithFields(map[string]interface{}{
			"post_id": cmd.postID,
			"error":   err.Error(),
		}))
		return
	}

	if err := e.bus.Publish(models.Event{
		Kind:    models.EventReactionSynced,
		PostID:  cmd.postID,
		Summary: summary,
	}); err != nil {
		e.logger.Warn("Reaction sync broadcast failed", logging.WithField("error", err.Error()))
	}
}

func (e *Engine) broadcast(postID string, kind models.Reaction) {
	if err := e.bus.Publish(models.Event{
		Kind:     models.EventReactionUpdated,
		PostID:   postID,
		Reaction: kind,
	}); err != nil {
		e.logger.Warn("Reaction broadcast failed", logging.WithField("error", err.Error()))
	}
}
