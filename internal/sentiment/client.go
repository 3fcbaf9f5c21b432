package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

type Result struct {
	Label models.SentimentLabel
	Score float64
}

// Neutral is the degraded default used when classification is not possible.
func Neutral() Result {
	return Result{Label: models.SentimentNeutral, Score: models.NeutralScore}
}

// Classifier assigns a sentiment label and confidence to a piece of text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Client calls a hosted sentiment-analysis inference endpoint. The endpoint
// is expected to speak the HuggingFace text-classification protocol:
// {"inputs": "..."} in, [[{"label": "...", "score": 0.99}, ...]] out.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Classify(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Neutral(), nil
	}

	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Neutral(), fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Neutral(), fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Neutral(), fmt.Errorf("failed to classify text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Neutral(), fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(body))
	}

	var scores [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return Neutral(), fmt.Errorf("failed to parse response: %w", err)
	}

	if len(scores) == 0 || len(scores[0]) == 0 {
		return Neutral(), fmt.Errorf("classifier returned no scores")
	}

	best := scores[0][0]
	for _, s := range scores[0][1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	label := parseLabel(best.Label)

	logger.Debug("Text classified",
		zap.String("label", string(label)),
		zap.Float64("score", best.Score),
	)

	return Result{Label: label, Score: best.Score}, nil
}

func parseLabel(raw string) models.SentimentLabel {
	switch strings.ToUpper(raw) {
	case "POSITIVE", "LABEL_1":
		return models.SentimentPositive
	case "NEGATIVE", "LABEL_0":
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
