package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func dashboardKey(topicID int64) string {
	return fmt.Sprintf("dashboard:%d", topicID)
}

func (c *Client) SetDashboard(ctx context.Context, topicID int64, dashboard *models.Dashboard, ttl time.Duration) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	err = c.client.Set(ctx, dashboardKey(topicID), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set dashboard cache: %w", err)
	}

	logger.Debug("Dashboard cached", zap.Int64("topic_id", topicID), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetDashboard(ctx context.Context, topicID int64) (*models.Dashboard, bool, error) {
	data, err := c.client.Get(ctx, dashboardKey(topicID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get dashboard cache: %w", err)
	}

	var dashboard models.Dashboard
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal dashboard: %w", err)
	}

	logger.Debug("Dashboard cache hit", zap.Int64("topic_id", topicID))
	return &dashboard, true, nil
}

// InvalidateDashboard drops the cached dashboard for a topic, typically
// after an analyze run saves new tweets.
func (c *Client) InvalidateDashboard(ctx context.Context, topicID int64) error {
	err := c.client.Del(ctx, dashboardKey(topicID)).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}

	logger.Debug("Dashboard cache invalidated", zap.Int64("topic_id", topicID))
	return nil
}
