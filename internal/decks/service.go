package decks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/entities"
)

// Parser turns a markdown document into an unsaved deck.
type Parser interface {
	Parse(content, origin string) entities.Deck
}

// Service is the single entry point for deck reads, writes and
// import/export. It owns updatedAt maintenance on the update paths.
type Service struct {
	backend Backend

	// importMu keeps ImportData exclusive against every other call made
	// through this service.
	importMu sync.RWMutex

	clockMu sync.Mutex
	last    time.Time
	now     func() time.Time
}

func NewService(backend Backend) *Service {
	return &Service{
		backend: backend,
		now:     time.Now,
	}
}

// BackendName reports which backend is active.
func (s *Service) BackendName() string {
	return s.backend.Name()
}

func (s *Service) GetAllDecks(ctx context.Context) ([]entities.Deck, error) {
	s.importMu.RLock()
	defer s.importMu.RUnlock()

	decks, err := s.backend.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all decks: %w", err)
	}
	return decks, nil
}

// GetDeckByID returns nil without an error when the deck does not exist.
func (s *Service) GetDeckByID(ctx context.Context, id uint) (*entities.Deck, error) {
	s.importMu.RLock()
	defer s.importMu.RUnlock()

	deck, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get deck %d: %w", id, err)
	}
	return deck, nil
}

// AddDeck stores a new deck and sets deck.ID. Zero timestamps are filled
// with the current time; others are kept as given.
func (s *Service) AddDeck(ctx context.Context, deck *entities.Deck) (uint, error) {
	s.importMu.RLock()
	defer s.importMu.RUnlock()

	if deck.CreatedAt.IsZero() || deck.UpdatedAt.IsZero() {
		now := s.stamp()
		if deck.CreatedAt.IsZero() {
			deck.CreatedAt = now
		}
		if deck.UpdatedAt.IsZero() {
			deck.UpdatedAt = now
		}
	}

	id, err := s.backend.Add(ctx, deck)
	if err != nil {
		return 0, fmt.Errorf("add deck: %w", err)
	}
	logrus.WithFields(logrus.Fields{"deck_id": id, "cards": len(deck.Cards)}).Debug("Deck added")
	return id, nil
}

// UpdateDeck merges changes into the deck and returns 1, or 0 when it does
// not exist. UpdatedAt is always set by the service; a caller-supplied value
// is discarded.
func (s *Service) UpdateDeck(ctx context.Context, id uint, changes entities.DeckChanges) (int, error) {
	s.importMu.RLock()
	defer s.importMu.RUnlock()

	stamp := s.stamp()
	current, err := s.backend.Get(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("update deck %d: %w", id, err)
	}
	if current != nil && !stamp.After(current.UpdatedAt) {
		stamp = current.UpdatedAt.Add(time.Nanosecond)
	}
	changes.UpdatedAt = &stamp

	updated, err := s.backend.Update(ctx, id, changes)
	if err != nil {
		return 0, fmt.Errorf("update deck %d: %w", id, err)
	}
	return updated, nil
}

func (s *Service) UpdateDeckName(ctx context.Context, id uint, name string) (int, error) {
	return s.UpdateDeck(ctx, id, entities.DeckChanges{Name: &name})
}

// DeleteDeck removes the deck. Unknown ids are ignored.
func (s *Service) DeleteDeck(ctx context.Context, id uint) error {
	s.importMu.RLock()
	defer s.importMu.RUnlock()

	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete deck %d: %w", id, err)
	}
	return nil
}

// ExportAllData returns every deck as indented JSON, in GetAllDecks order.
func (s *Service) ExportAllData(ctx context.Context) (string, error) {
	decks, err := s.GetAllDecks(ctx)
	if err != nil {
		return "", err
	}
	if decks == nil {
		decks = []entities.Deck{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(decks); err != nil {
		return "", fmt.Errorf("encode decks: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ImportData replaces all decks with the ones encoded in text. The payload
// is fully decoded first; on a *FormatError nothing is cleared. The clear
// and the insert happen in one backend call.
func (s *Service) ImportData(ctx context.Context, text string) error {
	decks, err := decodeDecks(text)
	if err != nil {
		return err
	}

	now := s.stamp()
	for i := range decks {
		if decks[i].CreatedAt.IsZero() {
			decks[i].CreatedAt = now
		}
		if decks[i].UpdatedAt.IsZero() {
			decks[i].UpdatedAt = now
		}
	}

	s.importMu.Lock()
	defer s.importMu.Unlock()

	if err := s.backend.ReplaceAll(ctx, decks); err != nil {
		return fmt.Errorf("replace decks: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"decks":   len(decks),
		"backend": s.backend.Name(),
	}).Info("Decks imported")
	return nil
}

// ParseAndAdd parses a document and stores the resulting deck.
func (s *Service) ParseAndAdd(ctx context.Context, parser Parser, content, origin string) (*entities.Deck, error) {
	deck := parser.Parse(content, origin)
	if _, err := s.AddDeck(ctx, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

func decodeDecks(text string) ([]entities.Deck, error) {
	payload := bytes.TrimSpace([]byte(text))
	if len(payload) == 0 || payload[0] != '[' {
		return nil, formatError("import data must be a JSON array of decks", nil)
	}

	var decks []entities.Deck
	if err := json.Unmarshal(payload, &decks); err != nil {
		return nil, formatError("import data is not valid deck JSON", err)
	}

	seen := make(map[uint]bool, len(decks))
	for _, deck := range decks {
		if deck.ID == 0 {
			continue
		}
		if seen[deck.ID] {
			return nil, formatError(fmt.Sprintf("import data repeats deck id %d", deck.ID), nil)
		}
		seen[deck.ID] = true
	}
	return decks, nil
}

// stamp returns the current time in UTC, strictly after any stamp this
// service handed out before.
func (s *Service) stamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}
