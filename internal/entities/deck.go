package entities

import "time"

// Example is an annotated sentence for a card. JPFurigana keeps the ruby
// markup as written, JPClean is the same sentence with the markup removed.
type Example struct {
	JPFurigana string `json:"jp_furigana"`
	JPClean    string `json:"jp_clean"`
	CN         string `json:"cn"`
}

// Card is one vocabulary entry. ID is unique within the owning deck only.
type Card struct {
	ID       int       `json:"id"`
	Word     string    `json:"word"`
	Reading  string    `json:"reading"`
	Meanings []string  `json:"meanings"`
	Examples []Example `json:"examples"`
}

// Deck is a named, ordered collection of cards.
// ID is zero until the deck has been persisted by a backend.
type Deck struct {
	ID          uint      `gorm:"primaryKey" json:"id,omitempty"`
	Name        string    `gorm:"index" json:"name"`
	Description string    `json:"description"`
	Cards       []Card    `gorm:"serializer:json;type:text" json:"cards"`
	CreatedAt   time.Time `gorm:"index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"index;autoUpdateTime:false" json:"updatedAt"`
}

func (Deck) TableName() string {
	return "decks"
}

// IsPersisted reports whether a backend has assigned the deck an id.
func (d Deck) IsPersisted() bool {
	return d.ID != 0
}

// DeckChanges is a partial update. Nil fields are left untouched.
type DeckChanges struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Cards       *[]Card    `json:"cards,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// IsEmpty reports whether no field is set.
func (c DeckChanges) IsEmpty() bool {
	return c.Name == nil && c.Description == nil && c.Cards == nil && c.CreatedAt == nil && c.UpdatedAt == nil
}

// Apply merges the present fields into deck.
func (c DeckChanges) Apply(deck *Deck) {
	if c.Name != nil {
		deck.Name = *c.Name
	}
	if c.Description != nil {
		deck.Description = *c.Description
	}
	if c.Cards != nil {
		deck.Cards = CloneCards(*c.Cards)
	}
	if c.CreatedAt != nil {
		deck.CreatedAt = *c.CreatedAt
	}
	if c.UpdatedAt != nil {
		deck.UpdatedAt = *c.UpdatedAt
	}
}

// Clone returns a copy of the deck that shares no slices with d.
func (d Deck) Clone() Deck {
	d.Cards = CloneCards(d.Cards)
	return d
}

// CloneCards deep-copies a card list, preserving a nil list. Meanings and
// Examples of every copied card are never nil, so they encode as [].
func CloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	for i, card := range cards {
		out[i] = card
		out[i].Meanings = append(make([]string, 0, len(card.Meanings)), card.Meanings...)
		out[i].Examples = append(make([]Example, 0, len(card.Examples)), card.Examples...)
	}
	return out
}
