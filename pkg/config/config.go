package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Twitter   TwitterConfig
	Sentiment SentimentConfig
	LLM       LLMConfig
	Themes    ThemesConfig
	Entities  EntitiesConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	DashboardTTL int
}

type TwitterConfig struct {
	BearerToken string
	NitterBase  string
	MaxResults  int
	TimeoutSec  int
}

type SentimentConfig struct {
	Endpoint   string
	APIKey     string
	TimeoutSec int
}

type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type ThemesConfig struct {
	TopN int
}

type EntitiesConfig struct {
	Types []string
	TopN  int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/topic-pulse")

	viper.SetEnvPrefix("TOPIC_PULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/topicpulse.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.dashboardTTL", 300)

	viper.SetDefault("twitter.nitterBase", "https://nitter.net")
	viper.SetDefault("twitter.maxResults", 10)
	viper.SetDefault("twitter.timeoutSec", 10)

	viper.SetDefault("sentiment.endpoint", "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english")
	viper.SetDefault("sentiment.timeoutSec", 15)

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 512)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("themes.topN", 5)

	viper.SetDefault("entities.types", []string{"PERSON", "GPE"})
	viper.SetDefault("entities.topN", 5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
