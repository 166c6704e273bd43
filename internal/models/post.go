package models

import "time"

// Author identifies who wrote a post.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	AvatarKey string `json:"avatar_key,omitempty"`
}

// RawPost is the wire-level record returned by the list and search commands.
// It carries no derived data; enrichment turns it into a Post.
type RawPost struct {
	ForumID      string                 `json:"forum_id"`
	Author       Author                 `json:"author"`
	Body         string                 `json:"body"`
	MediaKey     string                 `json:"media_key,omitempty"`
	ThumbnailKey string                 `json:"thumbnail_key,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Avatar is either a resolved image URL or a synthesized fallback.
type Avatar struct {
	URL      string `json:"url,omitempty"`
	Initials string `json:"initials,omitempty"`
	Color    string `json:"color,omitempty"`
}

// Post is a render-ready record: the raw server record plus derived fields.
// Signed URLs and the avatar are recomputed on every enrichment pass and must
// never be treated as source of truth.
type Post struct {
	RawPost

	MediaURL     string `json:"media_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Avatar       Avatar `json:"avatar"`

	CommentCount   int              `json:"comment_count"`
	ReactionsCount map[Reaction]int `json:"reactions_count"`
	TotalReactions int              `json:"total_reactions"`
	UserReaction   Reaction         `json:"user_reaction"`
}

// Clone returns a deep copy of the post. Both maps get their own copies so
// a snapshot never aliases the stored post; Extra values are copied one
// level deep.
func (p Post) Clone() Post {
	out := p
	if p.ReactionsCount != nil {
		out.ReactionsCount = make(map[Reaction]int, len(p.ReactionsCount))
		for k, v := range p.ReactionsCount {
			out.ReactionsCount[k] = v
		}
	}
	if p.Extra != nil {
		out.Extra = make(map[string]interface{}, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
