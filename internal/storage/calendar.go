package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ScheduledPost is a calendar entry. Content holds the prepared copy for the
// target platform.
type ScheduledPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Platform    string    `json:"platform"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Notes       string    `json:"notes,omitempty"`
}

// PostPatch carries the fields of an update. Nil fields are left unchanged.
type PostPatch struct {
	Title       *string
	Content     *string
	Platform    *string
	ScheduledAt *time.Time
	Notes       *string
}

// CalendarStore persists the scheduled-post collection as one JSON array,
// kept sorted ascending by ScheduledAt.
type CalendarStore struct {
	kv KV
}

func NewCalendarStore(kv KV) *CalendarStore {
	return &CalendarStore{kv: kv}
}

// List returns all scheduled posts in chronological order. Corrupt stored
// data is discarded and treated as empty.
func (cs *CalendarStore) List() ([]ScheduledPost, error) {
	raw, ok, err := cs.kv.Get(KeyCalendar)
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var posts []ScheduledPost
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		log.Printf("copysmith: discarding corrupt calendar data: %v", err)
		cs.kv.Delete(KeyCalendar)
		return nil, nil
	}
	return posts, nil
}

// Add inserts a post with a fresh id and returns the stored entry.
func (cs *CalendarStore) Add(post ScheduledPost) (*ScheduledPost, error) {
	posts, err := cs.List()
	if err != nil {
		return nil, err
	}
	post.ID = uuid.NewString()
	posts = append(posts, post)
	if err := cs.save(posts); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies a partial patch to the post with the given id. Unknown ids
// are a no-op.
func (cs *CalendarStore) Update(id string, patch PostPatch) error {
	posts, err := cs.List()
	if err != nil {
		return err
	}
	changed := false
	for i := range posts {
		if posts[i].ID != id {
			continue
		}
		if patch.Title != nil {
			posts[i].Title = *patch.Title
		}
		if patch.Content != nil {
			posts[i].Content = *patch.Content
		}
		if patch.Platform != nil {
			posts[i].Platform = *patch.Platform
		}
		if patch.ScheduledAt != nil {
			posts[i].ScheduledAt = *patch.ScheduledAt
		}
		if patch.Notes != nil {
			posts[i].Notes = *patch.Notes
		}
		changed = true
		break
	}
	if !changed {
		return nil
	}
	return cs.save(posts)
}

// Delete removes the post with the given id. Unknown ids are a no-op.
func (cs *CalendarStore) Delete(id string) error {
	posts, err := cs.List()
	if err != nil {
		return err
	}
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return nil
	}
	return cs.save(kept)
}

// Due returns posts scheduled at or before now, for reminder surfaces.
func (cs *CalendarStore) Due(now time.Time) ([]ScheduledPost, error) {
	posts, err := cs.List()
	if err != nil {
		return nil, err
	}
	var due []ScheduledPost
	for _, p := range posts {
		if !p.ScheduledAt.After(now) {
			due = append(due, p)
		}
	}
	return due, nil
}

func (cs *CalendarStore) save(posts []ScheduledPost) error {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ScheduledAt.Before(posts[j].ScheduledAt)
	})
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	if err := cs.kv.Set(KeyCalendar, string(data)); err != nil {
		return fmt.Errorf("save calendar: %w", err)
	}
	return nil
}
