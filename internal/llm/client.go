package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/pkg/circuitbreaker"
	"github.com/topic-pulse/backend/pkg/logger"
	"github.com/topic-pulse/backend/pkg/retry"
)

// NotEnoughTweetsMessage is returned instead of calling the model when a
// topic has too few posts to summarize meaningfully.
const NotEnoughTweetsMessage = "Not enough new tweets to generate a meaningful summary."

const minTweetsForSummary = 3

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens int, timeout time.Duration) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

type completionRequest struct {
	systemPrompt string
	userPrompt   string
}

func (c *Client) complete(ctx context.Context, req completionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.userPrompt,
		},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)

			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			content = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", err
	}

	return content, nil
}

// SummarizeTopic produces a short neutral summary of the conversation in the
// given tweets. Fewer than three tweets yields a fixed message without
// touching the model.
func (c *Client) SummarizeTopic(ctx context.Context, tweetTexts []string) (string, error) {
	if len(tweetTexts) < minTweetsForSummary {
		return NotEnoughTweetsMessage, nil
	}

	var b strings.Builder
	for _, text := range tweetTexts {
		b.WriteString("- ")
		b.WriteString(text)
		b.WriteString("\n")
	}

	systemPrompt := `You summarize social media conversations. Given recent tweets about a topic, write a concise, neutral summary of the current conversation and its key points. Do not editorialize.`

	userPrompt := fmt.Sprintf("Tweets:\n%s\nSummary:", b.String())

	summary, err := c.complete(ctx, completionRequest{
		systemPrompt: systemPrompt,
		userPrompt:   userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize topic: %w", err)
	}

	summary = strings.TrimSpace(summary)

	logger.Info("Topic summarized",
		zap.Int("tweets", len(tweetTexts)),
		zap.Int("summary_length", len(summary)),
	)

	return summary, nil
}
