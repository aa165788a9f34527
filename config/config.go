package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string          `mapstructure:"port"`
	DatabaseURL     string          `mapstructure:"DATABASE_URL"`
	StorageDir      string          `mapstructure:"storage_dir"`
	EmbeddingConfig EmbeddingConfig `mapstructure:"embedding"`
	SearchConfig    SearchConfig    `mapstructure:"search"`
}

type EmbeddingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"OPENAI_API_KEY"`
	Model     string `mapstructure:"model"`
	BatchSize int    `mapstructure:"batch_size"`
}

type SearchConfig struct {
	MatchThreshold float64 `mapstructure:"match_threshold"`
	DefaultLimit   int     `mapstructure:"default_limit"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("storage_dir", "storage/documents")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.batch_size", 100)
	v.SetDefault("search.match_threshold", 0.7)
	v.SetDefault("search.default_limit", 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("DATABASE_URL")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if config.EmbeddingConfig.APIKey == "" {
		config.EmbeddingConfig.APIKey = v.GetString("OPENAI_API_KEY")
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = v.GetString("DATABASE_URL")
	}

	return &config, nil
}
