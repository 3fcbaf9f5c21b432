package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/dashboard"
	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

type DashboardBuilder interface {
	Build(ctx context.Context, topicID int64) (*models.Dashboard, error)
}

type DashboardHandler struct {
	builder DashboardBuilder
}

func NewDashboardHandler(builder DashboardBuilder) *DashboardHandler {
	return &DashboardHandler{builder: builder}
}

func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	topicID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic id",
		})
	}

	d, err := h.builder.Build(c.Context(), int64(topicID))
	if err != nil {
		if errors.Is(err, dashboard.ErrTopicNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Topic not found",
			})
		}
		logger.Error("Failed to build dashboard", zap.Int("topic_id", topicID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build dashboard",
		})
	}

	return c.JSON(d)
}
