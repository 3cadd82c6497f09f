package history

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/rubiojr/reposearch/pkg/storage"
)

// MemoryPersister keeps the history in memory only.
type MemoryPersister struct {
	mu    sync.Mutex
	items []Item
	saves int
}

// NewMemoryPersister returns a persister seeded with items.
func NewMemoryPersister(items ...Item) *MemoryPersister {
	return &MemoryPersister{items: slices.Clone(items)}
}

func (m *MemoryPersister) Load() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items), nil
}

func (m *MemoryPersister) Save(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = slices.Clone(items)
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// RecordPersister stores the whole list as one JSON document under a single
// named record.
type RecordPersister struct {
	records *storage.RecordStorage
	name    string
}

// NewRecordPersister persists to the record called name.
func NewRecordPersister(records *storage.RecordStorage, name string) *RecordPersister {
	return &RecordPersister{records: records, name: name}
}

// Load returns an empty list when the record does not exist yet.
func (p *RecordPersister) Load() ([]Item, error) {
	data, ok, err := p.records.Get(p.name)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", p.name, err)
	}
	return items, nil
}

func (p *RecordPersister) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", p.name, err)
	}
	return p.records.Put(p.name, data)
}
