package models

// EventKind names an in-process feed mutation event.
type EventKind string

const (
	EventPostCreated     EventKind = "post.created"
	EventPostUpdated     EventKind = "post.updated"
	EventPostDeleted     EventKind = "post.deleted"
	EventCommentAdded    EventKind = "comment.added"
	EventCommentDeleted  EventKind = "comment.deleted"
	EventReactionUpdated EventKind = "reaction.updated"
	EventReactionSynced  EventKind = "reaction.synced"
)

// Event carries the minimal payload needed to reconcile one mutation against
// a rendered collection. Only the fields relevant to Kind are populated.
type Event struct {
	Kind     EventKind        `json:"kind"`
	PostID   string           `json:"post_id,omitempty"`
	Post     *RawPost         `json:"post,omitempty"`
	Reaction Reaction         `json:"reaction,omitempty"`
	Summary  *ReactionSummary `json:"summary,omitempty"`
}
