package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/analyzer"
	"github.com/topic-pulse/backend/internal/dashboard"
	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

type TopicAnalyzer interface {
	AnalyzeTopic(ctx context.Context, query string) (*analyzer.Result, error)
}

type TopicStore interface {
	ListTopics() ([]models.Topic, error)
	LoadTweetsByTopic(topicID int64) ([]models.Tweet, error)
}

type TopicHandler struct {
	analyzer TopicAnalyzer
	store    TopicStore
	cache    dashboard.Cache
}

func NewTopicHandler(a TopicAnalyzer, store TopicStore, cache dashboard.Cache) *TopicHandler {
	return &TopicHandler{
		analyzer: a,
		store:    store,
		cache:    cache,
	}
}

type tweetResponse struct {
	ID             int64     `json:"id"`
	TopicID        int64     `json:"topic_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	SentimentLabel string    `json:"sentiment_label"`
	SentimentScore float64   `json:"sentiment_score"`
}

func (h *TopicHandler) AnalyzeTopic(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.analyzer.AnalyzeTopic(c.Context(), req.Query)
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required",
			})
		}
		logger.Error("Failed to analyze topic", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze topic",
		})
	}

	if result.Saved > 0 && h.cache != nil {
		if err := h.cache.InvalidateDashboard(c.Context(), result.TopicID); err != nil {
			logger.Warn("Failed to invalidate dashboard cache",
				zap.Int64("topic_id", result.TopicID),
				zap.Error(err),
			)
		}
	}

	message := "No new tweets found"
	if result.Saved > 0 {
		message = "New tweets saved"
	} else if result.Fetched > 0 {
		message = "No tweets were new"
	}

	return c.JSON(fiber.Map{
		"run_id":   result.RunID,
		"topic_id": result.TopicID,
		"fetched":  result.Fetched,
		"saved":    result.Saved,
		"message":  message,
	})
}

func (h *TopicHandler) ListTopics(c *fiber.Ctx) error {
	topics, err := h.store.ListTopics()
	if err != nil {
		logger.Error("Failed to list topics", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list topics",
		})
	}

	type topicResponse struct {
		TopicID         int64     `json:"topic_id"`
		QueryText       string    `json:"query_text"`
		FirstSearchedAt time.Time `json:"first_searched_at"`
	}

	out := make([]topicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicResponse{
			TopicID:         t.ID,
			QueryText:       t.QueryText,
			FirstSearchedAt: t.FirstSearchedAt,
		})
	}

	return c.JSON(fiber.Map{
		"topics": out,
	})
}

func (h *TopicHandler) GetTopicTweets(c *fiber.Ctx) error {
	topicID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic id",
		})
	}

	tweets, err := h.store.LoadTweetsByTopic(int64(topicID))
	if err != nil {
		logger.Error("Failed to load tweets", zap.Int("topic_id", topicID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load tweets",
		})
	}

	out := make([]tweetResponse, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, tweetResponse{
			ID:             t.ID,
			TopicID:        t.TopicID,
			Text:           t.Text,
			CreatedAt:      t.CreatedAt,
			SentimentLabel: string(t.SentimentLabel),
			SentimentScore: t.SentimentScore,
		})
	}

	return c.JSON(fiber.Map{
		"tweets": out,
	})
}
