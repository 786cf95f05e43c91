package parsers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/entities"
)

// DescriptionTemplate builds the deck description from the origin label.
const DescriptionTemplate = "来自文件: %s"

const (
	deckHeadingPrefix    = "# "
	cardHeadingPrefix    = "## "
	sectionHeadingPrefix = "### "
	meaningsToken        = "含义"
	examplesToken        = "例句"
	exampleSeparator     = "／"
)

var (
	// WORD（READING） with full-width parentheses.
	cardHeaderPattern = regexp.MustCompile(`^(.+?)（(.+?)）$`)
	listItemPattern   = regexp.MustCompile(`^\d+\.\s`)
	rubyPattern       = regexp.MustCompile(`<ruby[^>]*>([^<]*)<rt[^>]*>[^<]*</rt></ruby>`)
)

// ErrUnreadableInput is returned when the document cannot be read at all.
var ErrUnreadableInput = errors.New("unreadable input")

// State is the position of the parser within a document.
type State int

const (
	StateIdle State = iota
	StateInCard
	StateInMeanings
	StateInExamples
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInCard:
		return "in_card"
	case StateInMeanings:
		return "in_meanings"
	case StateInExamples:
		return "in_examples"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// accumulator is threaded through the line reducer.
type accumulator struct {
	state  State
	origin string
	deck   entities.Deck
	card   *entities.Card
	nextID int
}

// rule is one row of the transition table. Rules are tried in order and the
// first match wins.
type rule struct {
	match func(acc *accumulator, line string) bool
	apply func(acc *accumulator, line string)
}

var transitions = []rule{
	{
		match: func(_ *accumulator, line string) bool { return strings.HasPrefix(line, deckHeadingPrefix) },
		apply: setDeckName,
	},
	{
		match: func(_ *accumulator, line string) bool { return strings.HasPrefix(line, cardHeadingPrefix) },
		apply: openCard,
	},
	{
		match: func(acc *accumulator, line string) bool { return isSection(line, meaningsToken) },
		apply: enterSection(StateInMeanings),
	},
	{
		match: func(acc *accumulator, line string) bool { return isSection(line, examplesToken) },
		apply: enterSection(StateInExamples),
	},
	{
		match: func(acc *accumulator, line string) bool {
			return acc.state == StateInMeanings && listItemPattern.MatchString(line)
		},
		apply: addMeaning,
	},
	{
		match: func(acc *accumulator, line string) bool {
			return acc.state == StateInExamples && listItemPattern.MatchString(line)
		},
		apply: addExample,
	},
}

// DeckParser converts vocabulary markdown into unsaved decks.
//
// Grammar, one construct per line:
//
//	# Deck name
//	## 水（みず）
//	### 含义
//	1. water
//	### 例句
//	1. <ruby>水<rt>みず</rt></ruby>を飲みます。／喝水。
type DeckParser struct {
	now func() time.Time
}

func NewDeckParser() *DeckParser {
	return &DeckParser{now: time.Now}
}

// Parse never fails: lines that do not fit the grammar are skipped.
func (p *DeckParser) Parse(content, origin string) entities.Deck {
	now := p.now().UTC()
	acc := &accumulator{
		state:  StateIdle,
		origin: origin,
		nextID: 1,
		deck: entities.Deck{
			Cards:     []entities.Card{},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, raw := range strings.Split(content, "\n") {
		reduce(acc, strings.TrimSpace(raw))
	}
	finalizeCard(acc)

	return acc.deck
}

// ParseReader reads the whole stream and parses it. Only read failures are
// reported as errors.
func (p *DeckParser) ParseReader(r io.Reader, origin string) (entities.Deck, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return entities.Deck{}, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	return p.Parse(string(content), origin), nil
}

// ParseFile parses a markdown file, using its base name as the origin.
func (p *DeckParser) ParseFile(path string) (entities.Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return entities.Deck{}, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	defer file.Close()

	return p.ParseReader(file, filepath.Base(path))
}

// ParseResult summarises a directory parse.
type ParseResult struct {
	FilesProcessed int `json:"files_processed"`
	FilesFailed    int `json:"files_failed"`
	CardsParsed    int `json:"cards_parsed"`
}

// ParseDirectory walks root recursively and parses every .md file.
// Unreadable files are counted and skipped.
func (p *DeckParser) ParseDirectory(root string) ([]entities.Deck, ParseResult, error) {
	var decks []entities.Deck
	result := ParseResult{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("Error accessing path")
			return nil
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		deck, parseErr := p.ParseFile(path)
		if parseErr != nil {
			logrus.WithError(parseErr).WithField("path", path).Warn("Failed to parse deck file")
			result.FilesFailed++
			return nil
		}

		decks = append(decks, deck)
		result.FilesProcessed++
		result.CardsParsed += len(deck.Cards)

		logrus.WithFields(logrus.Fields{
			"path":  path,
			"deck":  deck.Name,
			"cards": len(deck.Cards),
		}).Debug("Parsed deck file")
		return nil
	})
	if err != nil {
		return decks, result, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	return decks, result, nil
}

// StripRuby removes <ruby>TEXT<rt>READING</rt></ruby> markup, keeping TEXT.
func StripRuby(s string) string {
	return rubyPattern.ReplaceAllString(s, "$1")
}

func reduce(acc *accumulator, line string) {
	for _, r := range transitions {
		if r.match(acc, line) {
			r.apply(acc, line)
			return
		}
	}
}

func setDeckName(acc *accumulator, line string) {
	acc.deck.Name = strings.TrimSpace(strings.TrimPrefix(line, deckHeadingPrefix))
	acc.deck.Description = fmt.Sprintf(DescriptionTemplate, acc.origin)
}

func openCard(acc *accumulator, line string) {
	finalizeCard(acc)

	header := strings.TrimSpace(strings.TrimPrefix(line, cardHeadingPrefix))
	word, reading := header, header
	if m := cardHeaderPattern.FindStringSubmatch(header); m != nil {
		word, reading = m[1], m[2]
	}

	acc.card = &entities.Card{
		Word:     word,
		Reading:  reading,
		Meanings: []string{},
		Examples: []entities.Example{},
	}
	acc.state = StateInCard
}

func isSection(line, token string) bool {
	return strings.HasPrefix(line, sectionHeadingPrefix) && strings.Contains(line, token)
}

// enterSection switches collection mode. Without an open card there is
// nothing to collect into, so the parser stays idle.
func enterSection(next State) func(acc *accumulator, line string) {
	return func(acc *accumulator, _ string) {
		if acc.card == nil {
			return
		}
		acc.state = next
	}
}

func addMeaning(acc *accumulator, line string) {
	meaning := strings.TrimSpace(listItemPattern.ReplaceAllString(line, ""))
	if meaning == "" {
		return
	}
	acc.card.Meanings = append(acc.card.Meanings, meaning)
}

func addExample(acc *accumulator, line string) {
	text := strings.TrimSpace(listItemPattern.ReplaceAllString(line, ""))
	parts := strings.Split(text, exampleSeparator)
	if len(parts) < 2 {
		return
	}

	furigana := strings.TrimSpace(parts[0])
	acc.card.Examples = append(acc.card.Examples, entities.Example{
		JPFurigana: furigana,
		JPClean:    StripRuby(furigana),
		CN:         strings.TrimSpace(parts[1]),
	})
}

// finalizeCard appends the open card when it has both a word and a reading.
// Incomplete cards are dropped.
func finalizeCard(acc *accumulator) {
	card := acc.card
	acc.card = nil
	acc.state = StateIdle
	if card == nil || card.Word == "" || card.Reading == "" {
		return
	}

	card.ID = acc.nextID
	acc.nextID++
	acc.deck.Cards = append(acc.deck.Cards, *card)
}
