// Package config loads and validates service configuration from a YAML file
// plus environment overrides. Secrets never live in the file; they arrive
// through the environment, optionally via a .env file in development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/narratron/narratron/internal/generator"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

type Config struct {
	Server     ServerConfig     `yaml:"server" validate:"required"`
	Generation GenerationConfig `yaml:"generation" validate:"required"`
	TTS        TTSConfig        `yaml:"tts" validate:"required"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"required"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"required"`
	AudioDir        string        `yaml:"audio_dir" validate:"required"`
}

type GenerationConfig struct {
	Hosted          HostedConfig              `yaml:"hosted"`
	Local           LocalConfig               `yaml:"local"`
	BankPath        string                    `yaml:"bank_path"`
	Durations       map[string]DurationConfig `yaml:"durations" validate:"required,dive"`
	DefaultDuration string                    `yaml:"default_duration" validate:"required"`
}

type HostedConfig struct {
	APIKey    string          `yaml:"api_key"`
	BaseURL   string          `yaml:"base_url" validate:"omitempty,url"`
	Model     string          `yaml:"model"`
	Timeout   time.Duration   `yaml:"timeout" validate:"required"`
	RateLimit RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type LocalConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

type DurationConfig struct {
	MinWords    int     `yaml:"min_words" validate:"required,min=10"`
	MaxWords    int     `yaml:"max_words" validate:"required,gtefield=MinWords"`
	MaxTokens   int     `yaml:"max_tokens" validate:"required,min=50"`
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`
	TopP        float64 `yaml:"top_p" validate:"min=0,max=1"`
}

type TTSConfig struct {
	GoogleURL  string        `yaml:"google_url" validate:"omitempty,url"`
	Lang       string        `yaml:"lang"`
	Voice      string        `yaml:"voice"`
	Timeout    time.Duration `yaml:"timeout" validate:"required"`
	CleanupAge time.Duration `yaml:"cleanup_age" validate:"required"`
}

// Load reads the YAML file at path, falling back to NARRATRON_CONFIG when
// path is empty. When neither names a file, built-in defaults apply. A path
// that is named but unreadable is an error, as is a broken file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("NARRATRON_CONFIG")
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nerrors.NewConfigurationError("config",
				fmt.Sprintf("reading %s: %v", path, err))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nerrors.NewConfigurationError("config",
				fmt.Sprintf("parsing %s: %v", path, err))
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5001,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AudioDir:        "static/audio",
		},
		Generation: GenerationConfig{
			Hosted: HostedConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				Timeout: 30 * time.Second,
				RateLimit: RateLimitConfig{
					RequestsPerMinute: 30,
					BurstSize:         10,
				},
			},
			Local: LocalConfig{
				Timeout: 60 * time.Second,
			},
			Durations:       make(map[string]DurationConfig),
			DefaultDuration: generator.DefaultPresetName,
		},
		TTS: TTSConfig{
			Lang:       "es",
			Voice:      "es",
			Timeout:    15 * time.Second,
			CleanupAge: 24 * time.Hour,
		},
	}
	for name, p := range generator.DefaultPresets() {
		cfg.Generation.Durations[name] = DurationConfig{
			MinWords:    p.MinWords,
			MaxWords:    p.MaxWords,
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
			TopP:        p.TopP,
		}
	}
	return cfg
}

// applyEnv layers environment overrides on top of the file. Only secrets
// and deployment-specific endpoints are settable this way.
func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Generation.Hosted.APIKey == "" {
		c.Generation.Hosted.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.Generation.Hosted.APIKey == "" {
		c.Generation.Hosted.APIKey = key
		if !strings.Contains(c.Generation.Hosted.BaseURL, "googleapis") {
			c.Generation.Hosted.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
			c.Generation.Hosted.Model = "gemini-1.5-flash"
		}
	}
	if url := os.Getenv("NARRATRON_LOCAL_URL"); url != "" {
		c.Generation.Local.BaseURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if len(c.Generation.Durations) == 0 {
		c.Generation.Durations = defaults().Generation.Durations
	}
	if c.Generation.DefaultDuration == "" {
		c.Generation.DefaultDuration = generator.DefaultPresetName
	}
	if c.TTS.Lang == "" {
		c.TTS.Lang = "es"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = c.TTS.Lang
	}
}

func (c *Config) validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return nerrors.NewConfigurationError("config", err.Error())
	}
	if _, ok := c.Generation.Durations[c.Generation.DefaultDuration]; !ok {
		return nerrors.NewConfigurationError("config",
			fmt.Sprintf("default_duration %q has no duration entry", c.Generation.DefaultDuration))
	}
	return nil
}

// Presets converts the duration table into generation presets.
func (c *Config) Presets() map[string]generator.Preset {
	presets := make(map[string]generator.Preset, len(c.Generation.Durations))
	for name, d := range c.Generation.Durations {
		presets[name] = generator.Preset{
			MinWords:    d.MinWords,
			MaxWords:    d.MaxWords,
			MaxTokens:   d.MaxTokens,
			Temperature: d.Temperature,
			TopP:        d.TopP,
		}
	}
	return presets
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
