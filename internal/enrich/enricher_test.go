package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bme-bharat/communityfeed/internal/models"
	"github.com/bme-bharat/communityfeed/internal/testutil"
)

// fakeResolver scripts per-field outcomes and counts URL resolutions.
type fakeResolver struct {
	mu         sync.Mutex
	urlErr     error
	countErr   error
	summaryErr error
	summary    *models.ReactionSummary
	count      int
	urlCalls   int
}

func (r *fakeResolver) MediaURL(_ context.Context, contentKey string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urlCalls++
	if r.urlErr != nil {
		return "", r.urlErr
	}
	return "https://cdn.example/" + contentKey, nil
}

func (r *fakeResolver) CommentCount(_ context.Context, _ string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, r.countErr
}

func (r *fakeResolver) ReactionSummary(_ context.Context, _ string) (*models.ReactionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, r.summaryErr
}

func fullSummary() *models.ReactionSummary {
	return &models.ReactionSummary{
		Counts:       map[models.Reaction]int{models.ReactionLike: 2},
		Total:        2,
		UserReaction: models.ReactionLike,
	}
}

func TestEnrich_ResolvesEveryField(t *testing.T) {
	res := &fakeResolver{summary: fullSummary(), count: 7}
	e := New(res, testutil.NullLogger())

	raw := models.RawPost{
		ForumID:      "p1",
		Author:       models.Author{ID: "u1", Name: "Asha Rao", AvatarKey: "avatars/u1.jpg"},
		Body:         "hello",
		MediaKey:     "media/p1.jpg",
		ThumbnailKey: "thumbs/p1.jpg",
	}

	post := e.Enrich(context.Background(), raw)

	if post.MediaURL != "https://cdn.example/media/p1.jpg" {
		t.Errorf("MediaURL = %q", post.MediaURL)
	}
	if post.ThumbnailURL != "https://cdn.example/thumbs/p1.jpg" {
		t.Errorf("ThumbnailURL = %q", post.ThumbnailURL)
	}
	if post.Avatar.URL != "https://cdn.example/avatars/u1.jpg" {
		t.Errorf("Avatar.URL = %q", post.Avatar.URL)
	}
	if post.CommentCount != 7 {
		t.Errorf("CommentCount = %d, want 7", post.CommentCount)
	}
	if post.TotalReactions != 2 || post.UserReaction != models.ReactionLike {
		t.Errorf("reactions = %d/%s, want 2/Like", post.TotalReactions, post.UserReaction)
	}
}

func TestEnrich_SkipsAbsentMediaKeys(t *testing.T) {
	res := &fakeResolver{summary: fullSummary()}
	e := New(res, testutil.NullLogger())

	post := e.Enrich(context.Background(), models.RawPost{
		ForumID: "p1",
		Author:  models.Author{Name: "Asha Rao"},
	})

	if post.MediaURL != "" || post.ThumbnailURL != "" {
		t.Error("posts without media keys must not get URLs")
	}
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.urlCalls != 0 {
		t.Errorf("resolver called %d times for URL resolution, want 0", res.urlCalls)
	}
}

func TestEnrich_FieldFailuresDegradeIndependently(t *testing.T) {
	res := &fakeResolver{
		urlErr:     errors.New("presign failed"),
		countErr:   errors.New("count failed"),
		summaryErr: errors.New("summary failed"),
	}
	e := New(res, testutil.NullLogger())

	raw := models.RawPost{
		ForumID:  "p1",
		Author:   models.Author{Name: "Asha Rao", AvatarKey: "avatars/u1.jpg"},
		Body:     "survives",
		MediaKey: "media/p1.jpg",
	}

	post := e.Enrich(context.Background(), raw)

	if post.Body != "survives" {
		t.Fatal("post must never be discarded over sub-resolution failures")
	}
	if post.MediaURL != "" {
		t.Errorf("MediaURL = %q, want degraded empty", post.MediaURL)
	}
	if post.CommentCount != 0 {
		t.Errorf("CommentCount = %d, want degraded 0", post.CommentCount)
	}
	if post.ReactionsCount == nil {
		t.Error("ReactionsCount must be non-nil after degradation")
	}
	if post.UserReaction != models.ReactionNone {
		t.Errorf("UserReaction = %s, want None", post.UserReaction)
	}
	if post.Avatar.Initials != "AR" {
		t.Errorf("Avatar.Initials = %q, want the initials fallback", post.Avatar.Initials)
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	res := &fakeResolver{summary: fullSummary(), count: 3}
	e := New(res, testutil.NullLogger())

	raw := models.RawPost{
		ForumID:  "p1",
		Author:   models.Author{Name: "Asha Rao"},
		MediaKey: "media/p1.jpg",
	}

	first := e.Enrich(context.Background(), raw)
	second := e.Enrich(context.Background(), raw)

	if first.MediaURL != second.MediaURL {
		t.Errorf("MediaURL differs across runs: %q vs %q", first.MediaURL, second.MediaURL)
	}
	if first.Avatar != second.Avatar {
		t.Errorf("Avatar differs across runs: %+v vs %+v", first.Avatar, second.Avatar)
	}
	if first.CommentCount != second.CommentCount || first.TotalReactions != second.TotalReactions {
		t.Error("aggregates differ across runs on an unchanged record")
	}
}

func TestEnrich_ManyPostsConcurrently(t *testing.T) {
	res := &fakeResolver{summary: fullSummary()}
	e := New(res, testutil.NullLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", i)
			post := e.Enrich(context.Background(), models.RawPost{
				ForumID:  id,
				Author:   models.Author{Name: "User"},
				MediaKey: "media/" + id,
			})
			if post.ForumID != id {
				t.Errorf("post identity corrupted: %q", post.ForumID)
			}
		}(i)
	}
	wg.Wait()
}
