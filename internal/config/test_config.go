package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   2 * time.Second,
			UserAgent: "newsdesk-test/1.0",
		},
		Search: SearchConfig{
			Debounce:    800 * time.Millisecond,
			PageSize:    10,
			DefaultSort: "publishedAt",
		},
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Log:    LogConfig{Level: "off"},
		UI:     defaultConfig().UI,
		Opener: defaultConfig().Opener,
	}
}
