package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_topics (
		topic_id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_text TEXT UNIQUE NOT NULL,
		first_searched_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_topics_first_searched ON search_topics(first_searched_at);

	CREATE TABLE IF NOT EXISTS tweets (
		id INTEGER PRIMARY KEY,
		topic_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		sentiment_label TEXT NOT NULL,
		sentiment_score REAL NOT NULL,
		FOREIGN KEY (topic_id) REFERENCES search_topics(topic_id)
	);
	CREATE INDEX IF NOT EXISTS idx_tweets_topic ON tweets(topic_id);
	CREATE INDEX IF NOT EXISTS idx_tweets_created ON tweets(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// GetOrCreateTopic returns the id for query, inserting a new topic row on
// first sight. The unique constraint on query_text keeps concurrent callers
// from creating duplicate rows; the losing insert is a no-op and both callers
// read back the same id.
func (c *Client) GetOrCreateTopic(query string) (int64, error) {
	_, err := c.db.Exec(
		`INSERT INTO search_topics (query_text, first_searched_at) VALUES (?, ?)
		 ON CONFLICT(query_text) DO NOTHING`,
		query, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert topic: %w", err)
	}

	var topicID int64
	err = c.db.QueryRow(
		`SELECT topic_id FROM search_topics WHERE query_text = ?`, query,
	).Scan(&topicID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve topic: %w", err)
	}

	return topicID, nil
}

func (c *Client) ListTopics() ([]models.Topic, error) {
	rows, err := c.db.Query(
		`SELECT topic_id, query_text, first_searched_at FROM search_topics
		 ORDER BY first_searched_at DESC, topic_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		var firstSearched int64

		err := rows.Scan(&t.ID, &t.QueryText, &firstSearched)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		t.FirstSearchedAt = time.Unix(firstSearched, 0)
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topics: %w", err)
	}

	return topics, nil
}

// SaveTweets stamps every record with topicID and persists those whose id is
// not already present anywhere in the store. Duplicates are dropped silently
// via INSERT OR IGNORE against the global primary key. Returns the number of
// rows actually written.
func (c *Client) SaveTweets(tweets []models.Tweet, topicID int64) (int, error) {
	if len(tweets) == 0 {
		return 0, nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO tweets (id, topic_id, text, created_at, sentiment_label, sentiment_score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, t := range tweets {
		res, err := stmt.Exec(t.ID, topicID, t.Text, t.CreatedAt.Unix(), string(t.SentimentLabel), t.SentimentScore)
		if err != nil {
			return 0, fmt.Errorf("failed to insert tweet %d: %w", t.ID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		saved += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tweets: %w", err)
	}

	logger.Debug("Tweet batch saved",
		zap.Int64("topic_id", topicID),
		zap.Int("batch_size", len(tweets)),
		zap.Int("saved", saved),
	)

	return saved, nil
}

func (c *Client) LoadTweetsByTopic(topicID int64) ([]models.Tweet, error) {
	rows, err := c.db.Query(
		`SELECT id, topic_id, text, created_at, sentiment_label, sentiment_score FROM tweets
		 WHERE topic_id = ?
		 ORDER BY created_at DESC, id DESC`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tweets: %w", err)
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		var t models.Tweet
		var createdAt int64
		var label string

		err := rows.Scan(&t.ID, &t.TopicID, &t.Text, &createdAt, &label, &t.SentimentScore)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		t.CreatedAt = time.Unix(createdAt, 0)
		t.SentimentLabel = models.SentimentLabel(label)
		tweets = append(tweets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tweets: %w", err)
	}

	return tweets, nil
}

func (c *Client) GetTopic(topicID int64) (*models.Topic, error) {
	var t models.Topic
	var firstSearched int64

	err := c.db.QueryRow(
		`SELECT topic_id, query_text, first_searched_at FROM search_topics WHERE topic_id = ?`,
		topicID,
	).Scan(&t.ID, &t.QueryText, &firstSearched)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	t.FirstSearchedAt = time.Unix(firstSearched, 0)
	return &t, nil
}
