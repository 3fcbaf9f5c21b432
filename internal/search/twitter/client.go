package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/search"
	"github.com/topic-pulse/backend/pkg/logger"
)

const recentSearchURL = "https://api.twitter.com/2/tweets/search/recent"

// nitterDateLayout matches the title attribute on nitter timeline timestamps.
const nitterDateLayout = "Jan 2, 2006 · 3:04 PM UTC"

type Client struct {
	bearerToken string
	apiBase     string
	nitterBase  string
	httpClient  *http.Client
}

func NewClient(bearerToken, nitterBase string, timeout time.Duration) *Client {
	return &Client{
		bearerToken: bearerToken,
		apiBase:     recentSearchURL,
		nitterBase:  strings.TrimRight(nitterBase, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search returns up to maxResults recent posts matching query, excluding
// retweets. With a bearer token configured it uses the v2 recent search API;
// otherwise it falls back to scraping a nitter instance.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]search.Post, error) {
	if c.bearerToken != "" {
		return c.searchAPI(ctx, query, maxResults)
	}

	return c.searchNitter(ctx, query, maxResults)
}

func (c *Client) searchAPI(ctx context.Context, query string, maxResults int) ([]search.Post, error) {
	// The v2 endpoint rejects max_results outside 10..100.
	requested := maxResults
	if requested < 10 {
		requested = 10
	}
	if requested > 100 {
		requested = 100
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s -is:retweet", query))
	params.Set("max_results", strconv.Itoa(requested))
	params.Set("tweet.fields", "created_at")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", c.apiBase, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search tweets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp struct {
		Data []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	posts := make([]search.Post, 0, len(searchResp.Data))
	for _, t := range searchResp.Data {
		id, err := strconv.ParseInt(t.ID, 10, 64)
		if err != nil {
			logger.Warn("Skipping tweet with unparseable id", zap.String("id", t.ID))
			continue
		}

		createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			createdAt = time.Now()
		}

		posts = append(posts, search.Post{
			ID:        id,
			Text:      t.Text,
			CreatedAt: createdAt,
		})

		if len(posts) >= maxResults {
			break
		}
	}

	logger.Info("Tweet search completed",
		zap.String("query", query),
		zap.Int("results", len(posts)),
	)

	return posts, nil
}

func (c *Client) searchNitter(ctx context.Context, query string, maxResults int) ([]search.Post, error) {
	searchURL := fmt.Sprintf("%s/search?f=tweets&q=%s", c.nitterBase, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	posts := make([]search.Post, 0, maxResults)
	doc.Find(".timeline-item").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.Find(".retweet-header").Length() > 0 {
			return true
		}

		link, ok := s.Find("a.tweet-link").Attr("href")
		if !ok {
			return true
		}

		id, ok := parseStatusID(link)
		if !ok {
			return true
		}

		text := strings.TrimSpace(s.Find(".tweet-content").Text())
		if text == "" {
			return true
		}

		createdAt := time.Now()
		if title, ok := s.Find(".tweet-date a").Attr("title"); ok {
			if parsed, err := time.Parse(nitterDateLayout, title); err == nil {
				createdAt = parsed
			}
		}

		posts = append(posts, search.Post{
			ID:        id,
			Text:      text,
			CreatedAt: createdAt,
		})

		return len(posts) < maxResults
	})

	logger.Info("Nitter search completed",
		zap.String("query", query),
		zap.Int("results", len(posts)),
	)

	return posts, nil
}

// parseStatusID pulls the numeric id out of a status link such as
// /user/status/1234567890#m.
func parseStatusID(link string) (int64, bool) {
	idx := strings.LastIndex(link, "/status/")
	if idx < 0 {
		return 0, false
	}

	raw := link[idx+len("/status/"):]
	if hash := strings.IndexByte(raw, '#'); hash >= 0 {
		raw = raw[:hash]
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}
