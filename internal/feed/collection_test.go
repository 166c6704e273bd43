package feed

import (
	"testing"

	"github.com/bme-bharat/communityfeed/internal/models"
)

func post(id string) models.Post {
	return models.Post{
		RawPost:        models.RawPost{ForumID: id, Body: "body-" + id},
		ReactionsCount: map[models.Reaction]int{},
		UserReaction:   models.ReactionNone,
	}
}

func ids(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ForumID)
	}
	return out
}

func assertOrder(t *testing.T, c *Collection, want ...string) {
	t.Helper()
	got := ids(c.Posts())
	if len(got) != len(want) {
		t.Fatalf("collection has %d posts %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppend_DedupKeepsFirstOccurrence(t *testing.T) {
	c := NewCollection()
	c.Append([]models.Post{post("1"), post("2")})

	added := c.Append([]models.Post{post("2"), post("3"), post("3"), post("4")})
	if added != 2 {
		t.Errorf("Append() added %d, want 2", added)
	}
	assertOrder(t, c, "1", "2", "3", "4")
}

func TestAppend_ExistingPostWins(t *testing.T) {
	c := NewCollection()
	first := post("1")
	first.Body = "original"
	c.Append([]models.Post{first})

	dup := post("1")
	dup.Body = "duplicate"
	c.Append([]models.Post{dup})

	got, _ := c.Get("1")
	if got.Body != "original" {
		t.Errorf("Body = %q, want the first occurrence to win", got.Body)
	}
}

func TestReplaceAll_DiscardsPreviousContents(t *testing.T) {
	c := NewCollection()
	c.Append([]models.Post{post("1"), post("2"), post("3")})

	c.ReplaceAll([]models.Post{post("9"), post("8")})

	assertOrder(t, c, "9", "8")
	if _, ok := c.Get("1"); ok {
		t.Error("post from before ReplaceAll() should not survive")
	}
}

func TestPrepend(t *testing.T) {
	c := NewCollection()
	c.Append([]models.Post{post("1"), post("2")})

	c.Prepend(post("0"))
	assertOrder(t, c, "0", "1", "2")
}

func TestPrepend_ExistingIDReplacesInPlace(t *testing.T) {
	c := NewCollection()
	c.Append([]models.Post{post("1"), post("2")})

	updated := post("2")
	updated.Body = "updated"
	c.Prepend(updated)

	assertOrder(t, c, "1", "2")
	got, _ := c.Get("2")
	if got.Body != "updated" {
		t.Errorf("Body = %q, want %q", got.Body, "updated")
	}
}

func TestRemove(t *testing.T) {
	c := NewCollection()
	c.Append([]models.Post{post("1"), post("2"), post("3")})

	if !c.Remove("2") {
		t.Fatal("Remove() should report true for a held post")
	}
	assertOrder(t, c, "1", "3")

	if c.Remove("2") {
		t.Error("Remove() should report false for an absent post")
	}
}

func TestUpdate_PatchesInPlace(t *testing.T) {
	c := NewCollection()
	c.Append([]models.Post{post("1")})

	ok := c.Update("1", func(p *models.Post) {
		p.CommentCount = 7
	})
	if !ok {
		t.Fatal("Update() should report true for a held post")
	}

	got, _ := c.Get("1")
	if got.CommentCount != 7 {
		t.Errorf("CommentCount = %d, want 7", got.CommentCount)
	}
}

func TestUpdate_AbsentPost(t *testing.T) {
	c := NewCollection()
	if c.Update("missing", func(p *models.Post) {}) {
		t.Error("Update() should report false for an absent post")
	}
}

func TestPosts_ReturnsCopies(t *testing.T) {
	c := NewCollection()
	p := post("1")
	p.ReactionsCount[models.ReactionLike] = 1
	c.Append([]models.Post{p})

	snapshot := c.Posts()
	snapshot[0].ReactionsCount[models.ReactionLike] = 99
	snapshot[0].CommentCount = 99

	got, _ := c.Get("1")
	if got.ReactionsCount[models.ReactionLike] != 1 {
		t.Error("mutating a snapshot should not affect the collection's reaction counts")
	}
	if got.CommentCount != 0 {
		t.Error("mutating a snapshot should not affect the collection")
	}
}
