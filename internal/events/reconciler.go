package events

import (
	"context"
	"sync"

	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
)

// Applier is the feed view surface the reconciler mutates. Implementations
// must tolerate events for posts the view does not currently hold.
type Applier interface {
	ApplyCreated(ctx context.Context, post models.RawPost)
	ApplyUpdated(ctx context.Context, post models.RawPost)
	ApplyDeleted(postID string)
	ApplyCommentDelta(postID string, delta int)
	ApplyReaction(postID string, kind models.Reaction)
	ApplyReactionSummary(postID string, summary models.ReactionSummary)
}

// Reconciler folds bus events into one feed view. While the view is
// unfocused, create/update/delete and comment events are buffered in arrival
// order and replayed atomically on refocus. Reaction events bypass focus
// entirely so sibling views converge immediately.
//
// Comment events for the post currently open in the detail view are dropped
// while unfocused: its count is re-derived on the next enrichment of that
// post, so replaying them would double-count.
type Reconciler struct {
	mu        sync.Mutex
	focused   bool
	inspected string
	missed    []models.Event

	applier Applier
	logger  *logging.Logger
}

// NewReconciler creates a reconciler for one feed view. Views start focused.
func NewReconciler(applier Applier, logger *logging.Logger) *Reconciler {
	return &Reconciler{
		focused: true,
		applier: applier,
		logger:  logger,
	}
}

// Run consumes events until the channel closes or ctx is canceled.
func (r *Reconciler) Run(ctx context.Context, events <-chan models.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, ev)
		case <-ctx.Done():
			return
		}
	}
}

// SetInspected records which post the user is currently viewing in detail.
// Pass an empty string when no post is open.
func (r *Reconciler) SetInspected(postID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inspected = postID
}

// SetFocused transitions the view's focus state. On the unfocused-to-focused
// transition the missed buffer is drained in original arrival order and
// cleared atomically; events arriving during the drain start a new buffer.
func (r *Reconciler) SetFocused(ctx context.Context, focused bool) {
	r.mu.Lock()
	wasFocused := r.focused
	r.focused = focused

	var toReplay []models.Event
	if focused && !wasFocused {
		toReplay = r.missed
		r.missed = nil
	}
	r.mu.Unlock()

	if len(toReplay) == 0 {
		return
	}

	r.logger.Debug("Replaying missed events", logging.WithField("count", len(toReplay)))
	for _, ev := range toReplay {
		r.apply(ctx, ev)
	}
}

// Missed returns how many events are currently buffered.
func (r *Reconciler) Missed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.missed)
}

func (r *Reconciler) handle(ctx context.Context, ev models.Event) {
	// Reaction convergence ignores focus.
	if ev.Kind == models.EventReactionUpdated || ev.Kind == models.EventReactionSynced {
		r.apply(ctx, ev)
		return
	}

	r.mu.Lock()
	if !r.focused {
		if r.shouldBuffer(ev) {
			r.missed = append(r.missed, ev)
		}
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.apply(ctx, ev)
}

// shouldBuffer decides what an unfocused view keeps. Caller holds r.mu.
func (r *Reconciler) shouldBuffer(ev models.Event) bool {
	switch ev.Kind {
	case models.EventCommentAdded, models.EventCommentDeleted:
		return ev.PostID != r.inspected
	default:
		return true
	}
}

func (r *Reconciler) apply(ctx context.Context, ev models.Event) {
	switch ev.Kind {
	case models.EventPostCreated:
		if ev.Post != nil {
			r.applier.ApplyCreated(ctx, *ev.Post)
		}
	case models.EventPostUpdated:
		if ev.Post != nil {
			r.applier.ApplyUpdated(ctx, *ev.Post)
		}
	case models.EventPostDeleted:
		r.applier.ApplyDeleted(ev.PostID)
	case models.EventCommentAdded:
		r.applier.ApplyCommentDelta(ev.PostID, 1)
	case models.EventCommentDeleted:
		r.applier.ApplyCommentDelta(ev.PostID, -1)
	case models.EventReactionUpdated:
		r.applier.ApplyReaction(ev.PostID, ev.Reaction)
	case models.EventReactionSynced:
		if ev.Summary != nil {
			r.applier.ApplyReactionSummary(ev.PostID, *ev.Summary)
		}
	default:
		r.logger.Warn("Unknown event kind", logging.WithField("kind", string(ev.Kind)))
	}
}
