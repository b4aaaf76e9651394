package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// HistoryItem is one recorded generation. Result holds the platform-specific
// payload as produced by the gateway (already decoded JSON, re-encoded here).
type HistoryItem struct {
	ID        int64           `json:"id"`
	Platform  string          `json:"platform"`
	Icon      string          `json:"icon"`
	Input     string          `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HistoryStore persists generation history newest-first as one JSON array.
// Ids are millisecond timestamps, bumped monotonically so rapid writes never
// collide.
type HistoryStore struct {
	kv     KV
	lastID int64
	now    func() time.Time
}

func NewHistoryStore(kv KV) *HistoryStore {
	return &HistoryStore{kv: kv, now: time.Now}
}

// List returns history newest-first. Corrupt stored data is discarded and
// treated as empty.
func (hs *HistoryStore) List() ([]HistoryItem, error) {
	raw, ok, err := hs.kv.Get(KeyHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var items []HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("copysmith: discarding corrupt history data: %v", err)
		hs.kv.Delete(KeyHistory)
		return nil, nil
	}
	return items, nil
}

// Record prepends a new item and returns it with its assigned id.
func (hs *HistoryStore) Record(item HistoryItem) (*HistoryItem, error) {
	items, err := hs.List()
	if err != nil {
		return nil, err
	}

	id := hs.now().UnixMilli()
	if id <= hs.lastID {
		id = hs.lastID + 1
	}
	hs.lastID = id

	item.ID = id
	if item.CreatedAt.IsZero() {
		item.CreatedAt = hs.now().UTC()
	}

	items = append([]HistoryItem{item}, items...)
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	if err := hs.kv.Set(KeyHistory, string(data)); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return &item, nil
}

// Clear removes all history.
func (hs *HistoryStore) Clear() error {
	if err := hs.kv.Delete(KeyHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
