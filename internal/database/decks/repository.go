// Package decks provides the durable deck backend on top of gorm.
//
// This package implements the Backend interface defined in internal/decks.
//
//	var _ decks.Backend = (*Repository)(nil)
//
// # Usage
//
//	repo := decks.NewRepository(db)
//	all, err := repo.GetAll(ctx)
package decks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/kotoba/internal/entities"
)

// BackendName identifies this backend in logs and health output.
const BackendName = "sqlite"

// Repository stores decks in the "decks" table. Ids come from sqlite
// AUTOINCREMENT, so they are never reused even after Clear.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new deck repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Name() string {
	return BackendName
}

// GetAll returns every deck, most recently updated first.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Deck, error) {
	var decks []entities.Deck
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&decks).Error
	return decks, err
}

// Get returns the deck with id, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Deck, error) {
	var deck entities.Deck
	err := r.db.WithContext(ctx).First(&deck, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// Add inserts the deck and returns the assigned id. Any id already set on
// the argument is ignored.
func (r *Repository) Add(ctx context.Context, deck *entities.Deck) (uint, error) {
	record := normalize(deck.Clone())
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, err
	}
	deck.ID = record.ID
	return record.ID, nil
}

// Update merges changes into the stored deck. It returns 1 when the deck
// existed and 0 otherwise.
func (r *Repository) Update(ctx context.Context, id uint, changes entities.DeckChanges) (int, error) {
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deck entities.Deck
		err := tx.First(&deck, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		changes.Apply(&deck)
		deck = normalize(deck)
		if err := tx.Save(&deck).Error; err != nil {
			return err
		}
		updated = 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// Delete removes the deck. Deleting a missing id is not an error.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Deck{}, id).Error
}

// Clear removes all decks.
func (r *Repository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&entities.Deck{}).Error
}

// BulkAdd inserts all decks in one transaction. Decks without an id get one
// from the table sequence; decks with an id keep it.
func (r *Repository) BulkAdd(ctx context.Context, decks []entities.Deck) error {
	if len(decks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertAll(tx, decks)
	})
}

// ReplaceAll deletes every deck and inserts decks in one transaction, so a
// failed insert leaves the previous decks in place.
func (r *Repository) ReplaceAll(ctx context.Context, decks []entities.Deck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entities.Deck{}).Error; err != nil {
			return err
		}
		return insertAll(tx, decks)
	})
}

// insertAll writes decks with an explicit id before the rest. AUTOINCREMENT
// then numbers the remaining decks past the largest explicit id, the same
// way the memory backend does.
func insertAll(tx *gorm.DB, decks []entities.Deck) error {
	order := make([]int, 0, len(decks))
	for i := range decks {
		if decks[i].ID != 0 {
			order = append(order, i)
		}
	}
	for i := range decks {
		if decks[i].ID == 0 {
			order = append(order, i)
		}
	}

	for _, i := range order {
		record := normalize(decks[i].Clone())
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		decks[i].ID = record.ID
	}
	return nil
}

// normalize stores timestamps in UTC so that the textual ordering sqlite
// uses for updated_at matches chronological order.
func normalize(deck entities.Deck) entities.Deck {
	if deck.Cards == nil {
		deck.Cards = []entities.Card{}
	}
	deck.CreatedAt = toUTC(deck.CreatedAt)
	deck.UpdatedAt = toUTC(deck.UpdatedAt)
	return deck
}

func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
