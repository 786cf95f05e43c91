package parsers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotoba/internal/entities"
)

func fixedParser(t time.Time) *DeckParser {
	return &DeckParser{now: func() time.Time { return t }}
}

func TestDeckParser_BasicDeck(t *testing.T) {
	parsedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	parser := fixedParser(parsedAt)

	input := "# 基础词汇\n## 水（みず）\n### 含义\n1. 水\n### 例句\n1. 水を飲みます。／喝水。\n"
	deck := parser.Parse(input, "test.md")

	want := entities.Deck{
		Name:        "基础词汇",
		Description: "来自文件: test.md",
		Cards: []entities.Card{
			{
				ID:       1,
				Word:     "水",
				Reading:  "みず",
				Meanings: []string{"水"},
				Examples: []entities.Example{
					{JPFurigana: "水を飲みます。", JPClean: "水を飲みます。", CN: "喝水。"},
				},
			},
		},
		CreatedAt: parsedAt,
		UpdatedAt: parsedAt,
	}

	if diff := cmp.Diff(want, deck); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, deck.IsPersisted())
}

func TestDeckParser_FallbackHeader(t *testing.T) {
	deck := NewDeckParser().Parse("# 词汇\n## 学校\n", "school.md")

	require.Len(t, deck.Cards, 1)
	assert.Equal(t, "学校", deck.Cards[0].Word)
	assert.Equal(t, "学校", deck.Cards[0].Reading)
	assert.Empty(t, deck.Cards[0].Meanings)
	assert.Empty(t, deck.Cards[0].Examples)
}

func TestDeckParser_LastCardIsKeptAtEndOfInput(t *testing.T) {
	deck := NewDeckParser().Parse("## 本（ほん）", "x.md")

	require.Len(t, deck.Cards, 1)
	assert.Equal(t, "本", deck.Cards[0].Word)
	assert.Equal(t, "ほん", deck.Cards[0].Reading)
}

func TestDeckParser_SequentialCardIDs(t *testing.T) {
	input := strings.Join([]string{
		"# N5",
		"## 水（みず）",
		"### 含义",
		"1. water",
		"## 本（ほん）",
		"### 含义",
		"1. book",
		"2. counter for long objects",
		"## 学校（がっこう）",
	}, "\n")

	deck := NewDeckParser().Parse(input, "n5.md")

	require.Len(t, deck.Cards, 3)
	for i, card := range deck.Cards {
		assert.Equal(t, i+1, card.ID)
	}
	assert.Equal(t, []string{"water"}, deck.Cards[0].Meanings)
	assert.Equal(t, []string{"book", "counter for long objects"}, deck.Cards[1].Meanings)
	assert.Empty(t, deck.Cards[2].Meanings)
}

func TestDeckParser_RubyStripping(t *testing.T) {
	input := "## 水（みず）\n### 例句\n1. <ruby>水<rt>みず</rt></ruby>を<ruby>飲<rt>の</rt></ruby>みます。／ 喝水。 \n"

	deck := NewDeckParser().Parse(input, "ruby.md")

	require.Len(t, deck.Cards, 1)
	require.Len(t, deck.Cards[0].Examples, 1)
	example := deck.Cards[0].Examples[0]
	assert.Equal(t, "<ruby>水<rt>みず</rt></ruby>を<ruby>飲<rt>の</rt></ruby>みます。", example.JPFurigana)
	assert.Equal(t, "水を飲みます。", example.JPClean)
	assert.Equal(t, "喝水。", example.CN)
}

func TestDeckParser_MalformedExampleIsSkipped(t *testing.T) {
	input := "## 水（みず）\n### 例句\n1. 没有分隔符的句子\n2. 水です。／是水。\n"

	deck := NewDeckParser().Parse(input, "x.md")

	require.Len(t, deck.Cards, 1)
	require.Len(t, deck.Cards[0].Examples, 1)
	assert.Equal(t, "水です。", deck.Cards[0].Examples[0].JPClean)
}

func TestDeckParser_LinesOutsideSectionsAreIgnored(t *testing.T) {
	input := strings.Join([]string{
		"1. before any card",
		"## 水（みず）",
		"1. in card but no section",
		"some prose",
		"### 含义",
		"not a list item",
		"1. water",
	}, "\n")

	deck := NewDeckParser().Parse(input, "x.md")

	require.Len(t, deck.Cards, 1)
	assert.Equal(t, []string{"water"}, deck.Cards[0].Meanings)
	assert.Empty(t, deck.Name)
	assert.Empty(t, deck.Description)
}

func TestDeckParser_SectionWithoutCardStaysIdle(t *testing.T) {
	deck := NewDeckParser().Parse("### 含义\n1. orphan\n", "x.md")

	assert.Empty(t, deck.Cards)
}

func TestDeckParser_LastDeckHeadingWins(t *testing.T) {
	deck := NewDeckParser().Parse("# First\n## 水（みず）\n# Second\n", "x.md")

	assert.Equal(t, "Second", deck.Name)
	assert.Equal(t, "来自文件: x.md", deck.Description)
	assert.Len(t, deck.Cards, 1)
}

func TestDeckParser_WhitespaceIsTrimmed(t *testing.T) {
	input := "   # 词汇   \r\n\t## 水（みず）  \r\n  ### 含义\r\n   1.   water  \r\n"

	deck := NewDeckParser().Parse(input, "x.md")

	assert.Equal(t, "词汇", deck.Name)
	require.Len(t, deck.Cards, 1)
	assert.Equal(t, []string{"water"}, deck.Cards[0].Meanings)
}

func TestDeckParser_Idempotent(t *testing.T) {
	input := "# 基础词汇\n## 水（みず）\n### 含义\n1. 水\n### 例句\n1. 水を飲みます。／喝水。\n## 本（ほん）\n"
	parser := NewDeckParser()

	first := parser.Parse(input, "a.md")
	second := parser.Parse(input, "a.md")

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Description, second.Description)
	if diff := cmp.Diff(first.Cards, second.Cards); diff != "" {
		t.Errorf("cards differ between parses (-first +second):\n%s", diff)
	}
}

func TestDeckParser_EmptyInput(t *testing.T) {
	deck := NewDeckParser().Parse("", "empty.md")

	assert.Empty(t, deck.Name)
	assert.NotNil(t, deck.Cards)
	assert.Empty(t, deck.Cards)
}

func TestStripRuby(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<ruby>漢字<rt>かんじ</rt></ruby>", "漢字"},
		{`<ruby class="x">今日<rt class="y">きょう</rt></ruby>は`, "今日は"},
		{"<ruby>未閉じ<rt>みとじ", "<ruby>未閉じ<rt>みとじ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripRuby(tt.in), tt.in)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "in_card", StateInCard.String())
	assert.Equal(t, "in_meanings", StateInMeanings.String())
	assert.Equal(t, "in_examples", StateInExamples.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestDeckParser_ParseReader(t *testing.T) {
	t.Run("parses stream content", func(t *testing.T) {
		deck, err := NewDeckParser().ParseReader(strings.NewReader("# 词汇\n## 本（ほん）"), "upload.md")
		require.NoError(t, err)
		assert.Equal(t, "来自文件: upload.md", deck.Description)
		assert.Len(t, deck.Cards, 1)
	})

	t.Run("reports unreadable stream", func(t *testing.T) {
		_, err := NewDeckParser().ParseReader(failingReader{}, "broken.md")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnreadableInput)
	})
}

func TestDeckParser_ParseFileAndDirectory(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "n5")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(root, "basic.md"),
		[]byte("# 基础\n## 水（みず）\n## 本（ほん）\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "school.md"),
		[]byte("# 学校\n## 学校（がっこう）\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"),
		[]byte("# not a deck"), 0o644))

	t.Run("ParseFile uses base name as origin", func(t *testing.T) {
		deck, err := NewDeckParser().ParseFile(filepath.Join(nested, "school.md"))
		require.NoError(t, err)
		assert.Equal(t, "来自文件: school.md", deck.Description)
	})

	t.Run("ParseFile on missing file", func(t *testing.T) {
		_, err := NewDeckParser().ParseFile(filepath.Join(root, "missing.md"))
		assert.ErrorIs(t, err, ErrUnreadableInput)
	})

	t.Run("ParseDirectory walks recursively", func(t *testing.T) {
		decks, result, err := NewDeckParser().ParseDirectory(root)
		require.NoError(t, err)

		assert.Equal(t, 2, result.FilesProcessed)
		assert.Equal(t, 0, result.FilesFailed)
		assert.Equal(t, 3, result.CardsParsed)
		require.Len(t, decks, 2)

		names := []string{decks[0].Name, decks[1].Name}
		assert.ElementsMatch(t, []string{"基础", "学校"}, names)
	})
}
