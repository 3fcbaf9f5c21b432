package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/dashboard"
	"github.com/topic-pulse/backend/pkg/logger"
)

// WebSocketHandler drives an analyze run over a socket so the dashboard can
// show progress while collaborators are being called.
type WebSocketHandler struct {
	analyzer TopicAnalyzer
	builder  DashboardBuilder
	cache    dashboard.Cache
}

func NewWebSocketHandler(a TopicAnalyzer, builder DashboardBuilder, cache dashboard.Cache) *WebSocketHandler {
	return &WebSocketHandler{
		analyzer: a,
		builder:  builder,
		cache:    cache,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type  string `json:"type"`
			Query string `json:"query"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "analyze" {
			continue
		}

		if err := h.runAnalysis(c, msg.Query); err != nil {
			logger.Error("Failed to run analysis over WebSocket", zap.Error(err))
			h.send(c, map[string]interface{}{
				"type":  "error",
				"error": "Failed to analyze topic",
			})
		}
	}
}

func (h *WebSocketHandler) runAnalysis(c *websocket.Conn, query string) error {
	ctx := context.Background()

	h.send(c, map[string]interface{}{
		"type":    "status",
		"message": "Fetching latest tweets...",
	})

	result, err := h.analyzer.AnalyzeTopic(ctx, query)
	if err != nil {
		return err
	}

	if result.Saved > 0 && h.cache != nil {
		if err := h.cache.InvalidateDashboard(ctx, result.TopicID); err != nil {
			logger.Warn("Failed to invalidate dashboard cache",
				zap.Int64("topic_id", result.TopicID),
				zap.Error(err),
			)
		}
	}

	h.send(c, map[string]interface{}{
		"type":     "ingested",
		"run_id":   result.RunID,
		"topic_id": result.TopicID,
		"fetched":  result.Fetched,
		"saved":    result.Saved,
	})

	h.send(c, map[string]interface{}{
		"type":    "status",
		"message": "Building dashboard...",
	})

	d, err := h.builder.Build(ctx, result.TopicID)
	if err != nil {
		return err
	}

	return h.send(c, map[string]interface{}{
		"type":      "complete",
		"dashboard": d,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msg map[string]interface{}) error {
	return c.WriteJSON(msg)
}
