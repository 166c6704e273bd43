package feed

import "github.com/bme-bharat/communityfeed/internal/models"

// Collection is the rendered backing store for one feed view: an id-indexed
// map for O(1) lookups plus a separately maintained ordered id list for
// render order. forum_id is unique within a collection at all times.
//
// Collection is not safe for concurrent use; the owning controller
// serializes access.
type Collection struct {
	order []string
	byID  map[string]*models.Post
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		order: make([]string, 0),
		byID:  make(map[string]*models.Post),
	}
}

// Len returns the number of posts held.
func (c *Collection) Len() int {
	return len(c.order)
}

// Posts returns the posts in render order. The returned slice holds copies;
// mutating it does not affect the collection.
func (c *Collection) Posts() []models.Post {
	out := make([]models.Post, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// Get returns a copy of the post with the given id.
func (c *Collection) Get(id string) (models.Post, bool) {
	p, ok := c.byID[id]
	if !ok {
		return models.Post{}, false
	}
	return p.Clone(), true
}

// Prepend inserts a post at the front. If the id already exists the stored
// post is replaced in place and render order is unchanged.
func (c *Collection) Prepend(p models.Post) {
	if _, ok := c.byID[p.ForumID]; ok {
		stored := p.Clone()
		c.byID[p.ForumID] = &stored
		return
	}
	stored := p.Clone()
	c.byID[p.ForumID] = &stored
	c.order = append([]string{p.ForumID}, c.order...)
}

// Append merges a page onto the end, keeping only the first occurrence of
// each id: existing posts win, duplicates inside the page are dropped.
// Returns how many posts were added.
func (c *Collection) Append(posts []models.Post) int {
	added := 0
	for _, p := range posts {
		if _, ok := c.byID[p.ForumID]; ok {
			continue
		}
		stored := p.Clone()
		c.byID[p.ForumID] = &stored
		c.order = append(c.order, p.ForumID)
		added++
	}
	return added
}

// ReplaceAll discards the current contents and installs the given posts,
// deduplicated to first occurrence.
func (c *Collection) ReplaceAll(posts []models.Post) {
	c.order = make([]string, 0, len(posts))
	c.byID = make(map[string]*models.Post, len(posts))
	c.Append(posts)
}

// Replace swaps the stored post for the given id, preserving render order.
// Returns false when the id is not present.
func (c *Collection) Replace(id string, p models.Post) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	stored := p.Clone()
	stored.ForumID = id
	c.byID[id] = &stored
	return true
}

// Remove deletes the post with the given id.
func (c *Collection) Remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Update applies fn to the stored post with the given id. This is the O(1)
// counter-patch path; it must not trigger re-enrichment.
func (c *Collection) Update(id string, fn func(*models.Post)) bool {
	p, ok := c.byID[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}
