package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/topic-pulse/backend/internal/analyzer"
	"github.com/topic-pulse/backend/internal/storage/models"
)

type fakeAnalyzer struct {
	result    *analyzer.Result
	err       error
	lastQuery string
}

func (f *fakeAnalyzer) AnalyzeTopic(_ context.Context, query string) (*analyzer.Result, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTopicStore struct {
	topics  []models.Topic
	tweets  []models.Tweet
	listErr error
	loadErr error
}

func (f *fakeTopicStore) ListTopics() ([]models.Topic, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.topics, nil
}

func (f *fakeTopicStore) LoadTweetsByTopic(int64) ([]models.Tweet, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.tweets, nil
}

type fakeCache struct {
	invalidated []int64
	err         error
}

func (f *fakeCache) GetDashboard(context.Context, int64) (*models.Dashboard, bool, error) {
	return nil, false, nil
}

func (f *fakeCache) SetDashboard(context.Context, int64, *models.Dashboard, time.Duration) error {
	return nil
}

func (f *fakeCache) InvalidateDashboard(_ context.Context, topicID int64) error {
	f.invalidated = append(f.invalidated, topicID)
	return f.err
}

func newTopicApp(h *TopicHandler) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/topics/analyze", h.AnalyzeTopic)
	app.Get("/api/v1/topics", h.ListTopics)
	app.Get("/api/v1/topics/:id/tweets", h.GetTopicTweets)
	return app
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestAnalyzeTopicSavesAndInvalidatesCache(t *testing.T) {
	fa := &fakeAnalyzer{result: &analyzer.Result{RunID: "run-1", TopicID: 7, Fetched: 5, Saved: 3}}
	cache := &fakeCache{}
	app := newTopicApp(NewTopicHandler(fa, &fakeTopicStore{}, cache))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topics/analyze",
		strings.NewReader(`{"query":"chess"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var body struct {
		RunID   string `json:"run_id"`
		TopicID int64  `json:"topic_id"`
		Fetched int    `json:"fetched"`
		Saved   int    `json:"saved"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)

	if fa.lastQuery != "chess" {
		t.Errorf("analyzer got query %q", fa.lastQuery)
	}
	if body.TopicID != 7 || body.Fetched != 5 || body.Saved != 3 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Message != "New tweets saved" {
		t.Errorf("got message %q", body.Message)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 7 {
		t.Errorf("cache invalidations = %v, want [7]", cache.invalidated)
	}
}

func TestAnalyzeTopicAllDuplicates(t *testing.T) {
	fa := &fakeAnalyzer{result: &analyzer.Result{RunID: "run-2", TopicID: 7, Fetched: 4, Saved: 0}}
	cache := &fakeCache{}
	app := newTopicApp(NewTopicHandler(fa, &fakeTopicStore{}, cache))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topics/analyze",
		strings.NewReader(`{"query":"chess"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)

	if body.Message != "No tweets were new" {
		t.Errorf("got message %q", body.Message)
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("cache invalidated with nothing saved: %v", cache.invalidated)
	}
}

func TestAnalyzeTopicEmptyQuery(t *testing.T) {
	fa := &fakeAnalyzer{err: analyzer.ErrEmptyQuery}
	app := newTopicApp(NewTopicHandler(fa, &fakeTopicStore{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topics/analyze",
		strings.NewReader(`{"query":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeTopicInvalidBody(t *testing.T) {
	app := newTopicApp(NewTopicHandler(&fakeAnalyzer{}, &fakeTopicStore{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topics/analyze",
		strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeTopicInternalError(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("boom")}
	app := newTopicApp(NewTopicHandler(fa, &fakeTopicStore{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topics/analyze",
		strings.NewReader(`{"query":"chess"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", resp.StatusCode)
	}
}

func TestListTopics(t *testing.T) {
	store := &fakeTopicStore{topics: []models.Topic{
		{ID: 2, QueryText: "go generics", FirstSearchedAt: time.Unix(200, 0)},
		{ID: 1, QueryText: "chess", FirstSearchedAt: time.Unix(100, 0)},
	}}
	app := newTopicApp(NewTopicHandler(&fakeAnalyzer{}, store, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var body struct {
		Topics []struct {
			TopicID   int64  `json:"topic_id"`
			QueryText string `json:"query_text"`
		} `json:"topics"`
	}
	decodeBody(t, resp, &body)

	if len(body.Topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(body.Topics))
	}
	if body.Topics[0].TopicID != 2 || body.Topics[0].QueryText != "go generics" {
		t.Errorf("unexpected first topic: %+v", body.Topics[0])
	}
}

func TestListTopicsEmpty(t *testing.T) {
	app := newTopicApp(NewTopicHandler(&fakeAnalyzer{}, &fakeTopicStore{}, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body struct {
		Topics []json.RawMessage `json:"topics"`
	}
	decodeBody(t, resp, &body)

	if body.Topics == nil {
		t.Error("topics should encode as an empty array, not null")
	}
	if len(body.Topics) != 0 {
		t.Errorf("got %d topics, want 0", len(body.Topics))
	}
}

func TestGetTopicTweets(t *testing.T) {
	store := &fakeTopicStore{tweets: []models.Tweet{
		{ID: 11, TopicID: 1, Text: "good game", SentimentLabel: models.SentimentPositive, SentimentScore: 0.9},
	}}
	app := newTopicApp(NewTopicHandler(&fakeAnalyzer{}, store, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/topics/1/tweets", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var body struct {
		Tweets []struct {
			ID             int64   `json:"id"`
			SentimentLabel string  `json:"sentiment_label"`
			SentimentScore float64 `json:"sentiment_score"`
		} `json:"tweets"`
	}
	decodeBody(t, resp, &body)

	if len(body.Tweets) != 1 {
		t.Fatalf("got %d tweets, want 1", len(body.Tweets))
	}
	if body.Tweets[0].SentimentLabel != "POSITIVE" || body.Tweets[0].SentimentScore != 0.9 {
		t.Errorf("unexpected tweet: %+v", body.Tweets[0])
	}
}

func TestGetTopicTweetsBadID(t *testing.T) {
	app := newTopicApp(NewTopicHandler(&fakeAnalyzer{}, &fakeTopicStore{}, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/topics/abc/tweets", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", resp.StatusCode)
	}
}

func TestGetTopicTweetsStoreError(t *testing.T) {
	store := &fakeTopicStore{loadErr: errors.New("db closed")}
	app := newTopicApp(NewTopicHandler(&fakeAnalyzer{}, store, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/topics/1/tweets", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", resp.StatusCode)
	}
}
