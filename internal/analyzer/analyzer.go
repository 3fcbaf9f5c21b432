package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/metrics"
	"github.com/topic-pulse/backend/internal/search"
	"github.com/topic-pulse/backend/internal/sentiment"
	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

var ErrEmptyQuery = errors.New("query text must not be empty")

type TopicStore interface {
	GetOrCreateTopic(query string) (int64, error)
}

type TweetStore interface {
	SaveTweets(tweets []models.Tweet, topicID int64) (int, error)
}

// Analyzer runs one ingestion pass for a topic: resolve the topic id, fetch
// recent posts, classify each one, persist the annotated batch.
type Analyzer struct {
	topics     TopicStore
	tweets     TweetStore
	searcher   search.Client
	classifier sentiment.Classifier
	maxResults int
}

type Result struct {
	RunID   string `json:"run_id"`
	TopicID int64  `json:"topic_id"`
	Fetched int    `json:"fetched"`
	Saved   int    `json:"saved"`
}

func New(topics TopicStore, tweets TweetStore, searcher search.Client, classifier sentiment.Classifier, maxResults int) *Analyzer {
	if maxResults <= 0 {
		maxResults = 10
	}

	return &Analyzer{
		topics:     topics,
		tweets:     tweets,
		searcher:   searcher,
		classifier: classifier,
		maxResults: maxResults,
	}
}

// AnalyzeTopic ingests the latest posts for query and returns the topic id
// along with fetch/save counts. Collaborator failures degrade rather than
// abort: a failed search behaves as "no new posts" and a failed
// classification falls back to the neutral default for that item only. A
// failed store write is logged and reported as zero rows saved.
func (a *Analyzer) AnalyzeTopic(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	runID := uuid.New().String()

	logger.Info("Analyzing topic",
		zap.String("run_id", runID),
		zap.String("query", query),
	)

	topicID, err := a.topics.GetOrCreateTopic(query)
	if err != nil {
		return nil, err
	}

	posts, err := a.searcher.Search(ctx, query, a.maxResults)
	if err != nil {
		logger.Warn("Search failed, treating as no new posts",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		metrics.SearchFailures.Inc()
		posts = nil
	}

	metrics.TweetsFetched.Add(float64(len(posts)))

	if len(posts) == 0 {
		logger.Info("No new posts found",
			zap.String("run_id", runID),
			zap.Int64("topic_id", topicID),
		)
		metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
		return &Result{RunID: runID, TopicID: topicID}, nil
	}

	annotated := make([]models.Tweet, 0, len(posts))
	for _, post := range posts {
		result, err := a.classifier.Classify(ctx, post.Text)
		if err != nil {
			logger.Warn("Classification failed, using neutral default",
				zap.String("run_id", runID),
				zap.Int64("tweet_id", post.ID),
				zap.Error(err),
			)
			metrics.ClassifierFailures.Inc()
			result = sentiment.Neutral()
		}

		annotated = append(annotated, models.Tweet{
			ID:             post.ID,
			TopicID:        topicID,
			Text:           post.Text,
			CreatedAt:      post.CreatedAt,
			SentimentLabel: result.Label,
			SentimentScore: result.Score,
		})
	}

	saved, err := a.tweets.SaveTweets(annotated, topicID)
	if err != nil {
		// Best-effort persistence: the run still reports the topic, just
		// with nothing saved.
		logger.Error("Failed to save tweet batch",
			zap.String("run_id", runID),
			zap.Int64("topic_id", topicID),
			zap.Error(err),
		)
		saved = 0
	}

	metrics.TweetsSaved.Add(float64(saved))
	metrics.DuplicatesDropped.Add(float64(len(annotated) - saved))
	metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())

	logger.Info("Topic analyzed",
		zap.String("run_id", runID),
		zap.Int64("topic_id", topicID),
		zap.Int("fetched", len(posts)),
		zap.Int("saved", saved),
	)

	return &Result{
		RunID:   runID,
		TopicID: topicID,
		Fetched: len(posts),
		Saved:   saved,
	}, nil
}
