package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/entities"
	"github.com/topic-pulse/backend/internal/metrics"
	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/internal/themes"
	"github.com/topic-pulse/backend/pkg/logger"
)

var ErrTopicNotFound = errors.New("topic not found")

// SummaryUnavailableMessage is shown when the summarizer fails; the rest of
// the dashboard still renders.
const SummaryUnavailableMessage = "Could not generate summary due to an error."

type Store interface {
	GetTopic(topicID int64) (*models.Topic, error)
	LoadTweetsByTopic(topicID int64) ([]models.Tweet, error)
}

type Summarizer interface {
	SummarizeTopic(ctx context.Context, tweetTexts []string) (string, error)
}

// Cache holds rendered dashboards between analyze runs. Implementations must
// tolerate being skipped entirely; caching is never load-bearing.
type Cache interface {
	GetDashboard(ctx context.Context, topicID int64) (*models.Dashboard, bool, error)
	SetDashboard(ctx context.Context, topicID int64, dashboard *models.Dashboard, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context, topicID int64) error
}

// Builder assembles the presentation view of a topic: summary, sentiment
// counts, per-class themes and mentioned entities.
type Builder struct {
	store      Store
	summarizer Summarizer
	themes     *themes.Extractor
	entities   *entities.Extractor
	cache      Cache
	cacheTTL   time.Duration
}

func NewBuilder(store Store, summarizer Summarizer, themeExtractor *themes.Extractor, entityExtractor *entities.Extractor, cache Cache, cacheTTL time.Duration) *Builder {
	return &Builder{
		store:      store,
		summarizer: summarizer,
		themes:     themeExtractor,
		entities:   entityExtractor,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// Build renders the dashboard for a topic. Storage read failures are
// returned to the caller; collaborator failures degrade to placeholder
// content so absence of data is always representable.
func (b *Builder) Build(ctx context.Context, topicID int64) (*models.Dashboard, error) {
	if b.cache != nil {
		cached, ok, err := b.cache.GetDashboard(ctx, topicID)
		if err != nil {
			logger.Warn("Dashboard cache read failed", zap.Int64("topic_id", topicID), zap.Error(err))
		}
		if ok {
			metrics.DashboardCacheHits.Inc()
			return cached, nil
		}
		metrics.DashboardCacheMisses.Inc()
	}

	topic, err := b.store.GetTopic(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrTopicNotFound
	}

	tweets, err := b.store.LoadTweetsByTopic(topicID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(tweets))
	var positive, negative []string
	var positiveCount, negativeCount, neutralCount int

	for _, t := range tweets {
		texts = append(texts, t.Text)
		switch t.SentimentLabel {
		case models.SentimentPositive:
			positiveCount++
			positive = append(positive, t.Text)
		case models.SentimentNegative:
			negativeCount++
			negative = append(negative, t.Text)
		default:
			neutralCount++
		}
	}

	summary, err := b.summarizer.SummarizeTopic(ctx, texts)
	if err != nil {
		logger.Warn("Summarization failed", zap.Int64("topic_id", topicID), zap.Error(err))
		summary = SummaryUnavailableMessage
	}

	d := &models.Dashboard{
		TopicID:        topic.ID,
		QueryText:      topic.QueryText,
		Summary:        summary,
		TotalTweets:    len(tweets),
		PositiveCount:  positiveCount,
		NegativeCount:  negativeCount,
		NeutralCount:   neutralCount,
		PositiveThemes: b.themes.Extract(positive),
		NegativeThemes: b.themes.Extract(negative),
		Entities:       b.entities.Extract(texts),
		GeneratedAt:    time.Now(),
	}

	if b.cache != nil {
		if err := b.cache.SetDashboard(ctx, topicID, d, b.cacheTTL); err != nil {
			logger.Warn("Dashboard cache write failed", zap.Int64("topic_id", topicID), zap.Error(err))
		}
	}

	return d, nil
}
