package decks

import (
	"time"

	"github.com/mrlokans/kotoba/internal/entities"
)

// DemoDeck is the deck a fresh memory backend starts with.
func DemoDeck(now time.Time) entities.Deck {
	return entities.Deck{
		Name:        "基础日语词汇",
		Description: "常用的日语基础词汇学习卡片组",
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
			{
				ID:       2,
				Word:     "本",
				Reading:  "ほん",
				Meanings: []string{"书", "本"},
				Examples: []entities.Example{
					{JPFurigana: "本を読みます。", JPClean: "本を読みます。", CN: "读书。"},
				},
			},
			{
				ID:       3,
				Word:     "学校",
				Reading:  "がっこう",
				Meanings: []string{"学校"},
				Examples: []entities.Example{
					{JPFurigana: "学校に行きます。", JPClean: "学校に行きます。", CN: "去学校。"},
				},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
