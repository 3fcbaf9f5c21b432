package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/topic-pulse/backend/internal/entities"
	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/internal/themes"
)

type fakeStore struct {
	topic    *models.Topic
	tweets   []models.Tweet
	topicErr error
	loadErr  error
}

func (f *fakeStore) GetTopic(int64) (*models.Topic, error) {
	if f.topicErr != nil {
		return nil, f.topicErr
	}
	return f.topic, nil
}

func (f *fakeStore) LoadTweetsByTopic(int64) ([]models.Tweet, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.tweets, nil
}

type fakeSummarizer struct {
	summary string
	err     error
	texts   []string
	calls   int
}

func (f *fakeSummarizer) SummarizeTopic(_ context.Context, tweetTexts []string) (string, error) {
	f.calls++
	f.texts = tweetTexts
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type recordingCache struct {
	stored map[int64]*models.Dashboard
	getErr error
	setErr error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{stored: make(map[int64]*models.Dashboard)}
}

func (c *recordingCache) GetDashboard(_ context.Context, topicID int64) (*models.Dashboard, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	d, ok := c.stored[topicID]
	return d, ok, nil
}

func (c *recordingCache) SetDashboard(_ context.Context, topicID int64, d *models.Dashboard, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.stored[topicID] = d
	return nil
}

func (c *recordingCache) InvalidateDashboard(_ context.Context, topicID int64) error {
	delete(c.stored, topicID)
	return nil
}

func newTestBuilder(store Store, summarizer Summarizer, cache Cache) *Builder {
	return NewBuilder(store, summarizer,
		themes.NewExtractor(5),
		entities.NewExtractor(nil, 5),
		cache, time.Minute)
}

func testTweets() []models.Tweet {
	return []models.Tweet{
		{ID: 1, Text: "great tournament finish", SentimentLabel: models.SentimentPositive, SentimentScore: 0.9},
		{ID: 2, Text: "great opening prep", SentimentLabel: models.SentimentPositive, SentimentScore: 0.8},
		{ID: 3, Text: "terrible blunder cost the game", SentimentLabel: models.SentimentNegative, SentimentScore: 0.7},
		{ID: 4, Text: "round four starts tomorrow", SentimentLabel: models.SentimentNeutral, SentimentScore: models.NeutralScore},
	}
}

func TestBuildAssemblesDashboard(t *testing.T) {
	store := &fakeStore{
		topic:  &models.Topic{ID: 1, QueryText: "chess"},
		tweets: testTweets(),
	}
	sum := &fakeSummarizer{summary: "Players are discussing the tournament."}

	d, err := newTestBuilder(store, sum, nil).Build(context.Background(), 1)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if d.TopicID != 1 || d.QueryText != "chess" {
		t.Errorf("topic fields wrong: %+v", d)
	}
	if d.Summary != "Players are discussing the tournament." {
		t.Errorf("got summary %q", d.Summary)
	}
	if d.TotalTweets != 4 || d.PositiveCount != 2 || d.NegativeCount != 1 || d.NeutralCount != 1 {
		t.Errorf("counts wrong: total=%d pos=%d neg=%d neu=%d",
			d.TotalTweets, d.PositiveCount, d.NegativeCount, d.NeutralCount)
	}
	if len(sum.texts) != 4 {
		t.Errorf("summarizer saw %d texts, want all 4", len(sum.texts))
	}
	if d.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}

func TestBuildSummarizerFailureDegrades(t *testing.T) {
	store := &fakeStore{
		topic:  &models.Topic{ID: 1, QueryText: "chess"},
		tweets: testTweets(),
	}
	sum := &fakeSummarizer{err: errors.New("model unavailable")}

	d, err := newTestBuilder(store, sum, nil).Build(context.Background(), 1)
	if err != nil {
		t.Fatalf("build should not fail on summarizer error: %v", err)
	}

	if d.Summary != SummaryUnavailableMessage {
		t.Errorf("got summary %q, want placeholder", d.Summary)
	}
	if d.TotalTweets != 4 {
		t.Errorf("rest of dashboard should still render, got total=%d", d.TotalTweets)
	}
}

func TestBuildTopicNotFound(t *testing.T) {
	store := &fakeStore{topic: nil}

	_, err := newTestBuilder(store, &fakeSummarizer{}, nil).Build(context.Background(), 42)
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("got %v, want ErrTopicNotFound", err)
	}
}

func TestBuildStoreErrorsPropagate(t *testing.T) {
	topicErr := errors.New("db closed")
	if _, err := newTestBuilder(&fakeStore{topicErr: topicErr}, &fakeSummarizer{}, nil).
		Build(context.Background(), 1); !errors.Is(err, topicErr) {
		t.Errorf("topic read error not propagated: %v", err)
	}

	loadErr := errors.New("db closed")
	store := &fakeStore{topic: &models.Topic{ID: 1}, loadErr: loadErr}
	if _, err := newTestBuilder(store, &fakeSummarizer{}, nil).
		Build(context.Background(), 1); !errors.Is(err, loadErr) {
		t.Errorf("tweet read error not propagated: %v", err)
	}
}

func TestBuildEmptyTopic(t *testing.T) {
	store := &fakeStore{topic: &models.Topic{ID: 1, QueryText: "chess"}}
	sum := &fakeSummarizer{summary: "Not enough new tweets to generate a meaningful summary."}

	d, err := newTestBuilder(store, sum, nil).Build(context.Background(), 1)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if d.TotalTweets != 0 || d.PositiveCount != 0 || d.NegativeCount != 0 || d.NeutralCount != 0 {
		t.Errorf("counts should be zero: %+v", d)
	}
	if len(d.PositiveThemes) != 0 || len(d.NegativeThemes) != 0 || len(d.Entities) != 0 {
		t.Errorf("themes/entities should be empty: %+v", d)
	}
}

func TestBuildCacheHitSkipsStore(t *testing.T) {
	cache := newRecordingCache()
	cached := &models.Dashboard{TopicID: 1, QueryText: "chess", Summary: "cached"}
	cache.stored[1] = cached

	store := &fakeStore{topicErr: errors.New("store should not be touched")}
	sum := &fakeSummarizer{}

	d, err := newTestBuilder(store, sum, cache).Build(context.Background(), 1)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if d != cached {
		t.Error("expected the cached dashboard back")
	}
	if sum.calls != 0 {
		t.Errorf("summarizer called %d times on cache hit", sum.calls)
	}
}

func TestBuildCacheMissPopulatesCache(t *testing.T) {
	cache := newRecordingCache()
	store := &fakeStore{topic: &models.Topic{ID: 1, QueryText: "chess"}, tweets: testTweets()}

	d, err := newTestBuilder(store, &fakeSummarizer{summary: "ok"}, cache).Build(context.Background(), 1)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if cache.stored[1] != d {
		t.Error("dashboard not written to cache")
	}
}

func TestBuildCacheFailuresTolerated(t *testing.T) {
	cache := newRecordingCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	store := &fakeStore{topic: &models.Topic{ID: 1, QueryText: "chess"}, tweets: testTweets()}

	d, err := newTestBuilder(store, &fakeSummarizer{summary: "ok"}, cache).Build(context.Background(), 1)
	if err != nil {
		t.Fatalf("build should survive cache errors: %v", err)
	}
	if d.Summary != "ok" {
		t.Errorf("got summary %q", d.Summary)
	}
}
