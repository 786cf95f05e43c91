package decks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrlokans/kotoba/internal/entities"
)

// MemoryBackendName identifies the memory backend in logs and health output.
const MemoryBackendName = "memory"

// MemoryBackend keeps decks in a map keyed by id. The id counter only grows,
// so ids stay unique across Delete and Clear.
type MemoryBackend struct {
	mu     sync.RWMutex
	decks  map[uint]entities.Deck
	nextID uint
}

// NewMemoryBackend returns a memory backend seeded with the demo deck.
func NewMemoryBackend() *MemoryBackend {
	m := NewEmptyMemoryBackend()
	demo := DemoDeck(time.Now().UTC())
	_, _ = m.Add(context.Background(), &demo)
	return m
}

// NewEmptyMemoryBackend returns a memory backend with no decks.
func NewEmptyMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		decks:  make(map[uint]entities.Deck),
		nextID: 1,
	}
}

func (m *MemoryBackend) Name() string {
	return MemoryBackendName
}

func (m *MemoryBackend) GetAll(ctx context.Context) ([]entities.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entities.Deck, 0, len(m.decks))
	for _, deck := range m.decks {
		out = append(out, deck.Clone())
	}
	sortByRecency(out)
	return out, nil
}

func (m *MemoryBackend) Get(ctx context.Context, id uint) (*entities.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deck, ok := m.decks[id]
	if !ok {
		return nil, nil
	}
	clone := deck.Clone()
	return &clone, nil
}

func (m *MemoryBackend) Add(ctx context.Context, deck *entities.Deck) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := deck.Clone()
	record.ID = m.nextID
	m.nextID++
	if record.Cards == nil {
		record.Cards = []entities.Card{}
	}
	m.decks[record.ID] = record
	deck.ID = record.ID
	return record.ID, nil
}

func (m *MemoryBackend) Update(ctx context.Context, id uint, changes entities.DeckChanges) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deck, ok := m.decks[id]
	if !ok {
		return 0, nil
	}
	changes.Apply(&deck)
	if deck.Cards == nil {
		deck.Cards = []entities.Card{}
	}
	m.decks[id] = deck
	return 1, nil
}

func (m *MemoryBackend) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.decks, id)
	return nil
}

func (m *MemoryBackend) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.decks = make(map[uint]entities.Deck)
	return nil
}

// BulkAdd inserts all decks or none. A deck whose id is already taken, in
// the store or earlier in the batch, fails the whole call.
func (m *MemoryBackend) BulkAdd(ctx context.Context, decks []entities.Deck) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insert(m.decks, decks)
}

// ReplaceAll swaps the whole store for decks. On error the previous decks
// stay in place.
func (m *MemoryBackend) ReplaceAll(ctx context.Context, decks []entities.Deck) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := make(map[uint]entities.Deck, len(decks))
	if err := m.insert(fresh, decks); err != nil {
		return err
	}
	m.decks = fresh
	return nil
}

// insert validates the batch against target, then stores it. The sequence
// first moves past every explicit id, and decks without one are numbered
// from there in batch order. Callers hold m.mu.
func (m *MemoryBackend) insert(target map[uint]entities.Deck, decks []entities.Deck) error {
	seen := make(map[uint]bool)
	for _, deck := range decks {
		if deck.ID == 0 {
			continue
		}
		if _, exists := target[deck.ID]; exists || seen[deck.ID] {
			return fmt.Errorf("deck %d already exists", deck.ID)
		}
		seen[deck.ID] = true
	}

	next := m.nextID
	for id := range seen {
		if id >= next {
			next = id + 1
		}
	}

	for i := range decks {
		record := decks[i].Clone()
		if record.ID == 0 {
			record.ID = next
			next++
		}
		if record.Cards == nil {
			record.Cards = []entities.Card{}
		}
		target[record.ID] = record
		decks[i].ID = record.ID
	}
	m.nextID = next
	return nil
}

// sortByRecency orders decks by UpdatedAt descending, newest id first on ties.
func sortByRecency(decks []entities.Deck) {
	sort.Slice(decks, func(i, j int) bool {
		if !decks[i].UpdatedAt.Equal(decks[j].UpdatedAt) {
			return decks[i].UpdatedAt.After(decks[j].UpdatedAt)
		}
		return decks[i].ID > decks[j].ID
	})
}
