package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. NEWSDESK_API_BASE_URL.
const EnvPrefix = "NEWSDESK"

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Search   SearchConfig   `mapstructure:"search"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Opener   OpenerConfig   `mapstructure:"opener"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type SearchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	PageSize    int           `mapstructure:"page_size"`
	DefaultSort string        `mapstructure:"default_sort"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width"`
}

type OpenerConfig struct {
	// Command overrides the platform opener from the embedded definitions.
	Command string `mapstructure:"command"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   10 * time.Second,
			UserAgent: "newsdesk/1.0 (https://github.com/pders01/newsdesk)",
		},
		Search: SearchConfig{
			Debounce:    800 * time.Millisecond,
			PageSize:    10,
			DefaultSort: "publishedAt",
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".newsdesk.db"),
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".newsdesk", "newsdesk.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Article: ArticleConfig{
				MaxDescriptionLength: 120,
				WordWrapMaxWidth:     120,
				WordWrapMinWidth:     40,
			},
		},
		Opener: OpenerConfig{
			Command: "",
		},
	}
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// flatten turns the default config into viper leaf keys so that env
// overrides and partial config files merge per field.
func flatten(cfg *Config) map[string]any {
	return map[string]any{
		"api.base_url":                      cfg.API.BaseURL,
		"api.timeout":                       cfg.API.Timeout,
		"api.user_agent":                    cfg.API.UserAgent,
		"search.debounce":                   cfg.Search.Debounce,
		"search.page_size":                  cfg.Search.PageSize,
		"search.default_sort":               cfg.Search.DefaultSort,
		"database.path":                     cfg.Database.Path,
		"database.timeout":                  cfg.Database.Timeout,
		"log.level":                         cfg.Log.Level,
		"log.file":                          cfg.Log.File,
		"ui.colors.primary":                 cfg.UI.Colors.Primary,
		"ui.colors.secondary":               cfg.UI.Colors.Secondary,
		"ui.colors.accent":                  cfg.UI.Colors.Accent,
		"ui.colors.text":                    cfg.UI.Colors.Text,
		"ui.colors.muted":                   cfg.UI.Colors.Muted,
		"ui.colors.error":                   cfg.UI.Colors.Error,
		"ui.colors.success":                 cfg.UI.Colors.Success,
		"ui.article.max_description_length": cfg.UI.Article.MaxDescriptionLength,
		"ui.article.word_wrap_max_width":    cfg.UI.Article.WordWrapMaxWidth,
		"ui.article.word_wrap_min_width":    cfg.UI.Article.WordWrapMinWidth,
		"opener.command":                    cfg.Opener.Command,
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "newsdesk")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative, got %s", c.Search.Debounce)
	}
	if c.Search.PageSize < 1 || c.Search.PageSize > 100 {
		return fmt.Errorf("search.page_size must be between 1 and 100, got %d", c.Search.PageSize)
	}
	switch c.Search.DefaultSort {
	case "relevancy", "popularity", "publishedAt":
	default:
		return fmt.Errorf("search.default_sort %q is not one of relevancy, popularity, publishedAt", c.Search.DefaultSort)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	apiCfg := map[string]any{
		"base_url":   config.API.BaseURL,
		"timeout":    config.API.Timeout.String(),
		"user_agent": config.API.UserAgent,
	}

	searchCfg := map[string]any{
		"debounce":     config.Search.Debounce.String(),
		"page_size":    config.Search.PageSize,
		"default_sort": config.Search.DefaultSort,
	}

	dbCfg := map[string]any{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}

	logCfg := map[string]any{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	uiCfg := map[string]any{
		"colors": map[string]any{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
		"article": map[string]any{
			"max_description_length": config.UI.Article.MaxDescriptionLength,
			"word_wrap_max_width":    config.UI.Article.WordWrapMaxWidth,
			"word_wrap_min_width":    config.UI.Article.WordWrapMinWidth,
		},
	}

	v.Set("api", apiCfg)
	v.Set("search", searchCfg)
	v.Set("database", dbCfg)
	v.Set("log", logCfg)
	v.Set("ui", uiCfg)
	v.Set("opener", map[string]any{"command": config.Opener.Command})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// DefaultConfigPath is where GenerateDefaultConfig writes when no path is given.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "newsdesk", "config.toml")
}
