package models

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// NeutralScore is the confidence recorded when classification is skipped or
// fails for an item.
const NeutralScore = 0.5

type Topic struct {
	ID              int64
	QueryText       string
	FirstSearchedAt time.Time
}

// Tweet is one persisted post. ID comes from the source, never generated
// locally, and is unique across all topics: a post fetched under two topics
// stays with whichever topic stored it first.
type Tweet struct {
	ID             int64
	TopicID        int64
	Text           string
	CreatedAt      time.Time
	SentimentLabel SentimentLabel
	SentimentScore float64
}

type EntityMention struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

type Dashboard struct {
	TopicID        int64           `json:"topic_id"`
	QueryText      string          `json:"query_text"`
	Summary        string          `json:"summary"`
	TotalTweets    int             `json:"total_tweets"`
	PositiveCount  int             `json:"positive_count"`
	NegativeCount  int             `json:"negative_count"`
	NeutralCount   int             `json:"neutral_count"`
	PositiveThemes []string        `json:"positive_themes"`
	NegativeThemes []string        `json:"negative_themes"`
	Entities       []EntityMention `json:"entities"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
