package models

// Reaction is one of the fixed set of responses a user can attach to a post.
type Reaction string

const (
	ReactionNone       Reaction = "None"
	ReactionLike       Reaction = "Like"
	ReactionInsightful Reaction = "Insightful"
	ReactionSupport    Reaction = "Support"
	ReactionFunny      Reaction = "Funny"
	ReactionThanks     Reaction = "Thanks"
)

// AllReactions lists every selectable reaction kind, excluding None.
var AllReactions = []Reaction{
	ReactionLike,
	ReactionInsightful,
	ReactionSupport,
	ReactionFunny,
	ReactionThanks,
}

// Valid reports whether r is a known reaction kind (including None).
func (r Reaction) Valid() bool {
	if r == ReactionNone {
		return true
	}
	for _, known := range AllReactions {
		if r == known {
			return true
		}
	}
	return false
}

// ReactionSummary is the server's canonical per-post aggregate.
type ReactionSummary struct {
	Counts       map[Reaction]int `json:"counts"`
	Total        int              `json:"total"`
	UserReaction Reaction         `json:"user_reaction"`
}
