package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Dataset struct {
		Dir string `yaml:"dir"`
	} `yaml:"dataset"`
	Catalog struct {
		File string `yaml:"file"`
	} `yaml:"catalog"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Scoring struct {
		Workers int `yaml:"workers"`
	} `yaml:"scoring"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	GenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"genai"`
	Proxy string `yaml:"proxy"`
}

// Path returns the config file location from CONFIG_PATH or DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file, then environment overrides, then
// fills defaults. A missing .env or YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"DATASET_DIR", &c.Dataset.Dir},
		{"CATALOG_FILE", &c.Catalog.File},
		{"OUTPUT_DIR", &c.Output.Dir},
		{"SCORING_CRON", &c.Schedule.Cron},
		{"LOG_LEVEL", &c.Log.Level},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"GEMINI_API_KEY", &c.GenAI.APIKey},
		{"GEMINI_MODEL", &c.GenAI.Model},
		{"HTTPS_PROXY", &c.Proxy},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("SCORING_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCORING_WORKERS: %w", err)
		}
		c.Scoring.Workers = n
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/advisor.db"
	}
	if c.Dataset.Dir == "" {
		c.Dataset.Dir = "dataset"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if c.Scoring.Workers == 0 {
		c.Scoring.Workers = 4
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 3 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = "gemini-2.0-flash"
	}
}

// TelegramEnabled reports whether run summaries can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// GenAIEnabled reports whether push texts are generated by the model.
func (c *Config) GenAIEnabled() bool {
	return c.GenAI.APIKey != ""
}

// Validate checks field invariants.
func (c *Config) Validate() error {
	if c.Scoring.Workers < 1 {
		return fmt.Errorf("%w: scoring.workers must be at least 1, got %d", ErrInvalid, c.Scoring.Workers)
	}
	if strings.TrimSpace(c.Database.SQLitePath) == "" {
		return fmt.Errorf("%w: database.sqlite_path is required", ErrInvalid)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("%w: schedule.cron %q: %v", ErrInvalid, c.Schedule.Cron, err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("%w: telegram.bot_token and telegram.chat_id must be set together", ErrInvalid)
	}
	return nil
}
