package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nussjustin/respcodec"
)

// Config holds the settings shared by all respconv commands.
type Config struct {
	Format   string
	MaxDepth int
	LogLevel slog.Level
	Prompt   string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Format:   JSON{}.Name(),
		MaxDepth: respcodec.DefaultMaxNestedLevels,
		LogLevel: slog.LevelWarn,
		Prompt:   "resp> ",
	}
}

// LoadFromEnv overrides settings with the RESPCONV_* environment variables that are set.
func (c *Config) LoadFromEnv() error {
	return c.apply(os.Getenv)
}

// LoadFromFile overrides settings with the RESPCONV_* variables defined in the given .env file. The process
// environment is left untouched.
func (c *Config) LoadFromFile(path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c.apply(func(key string) string { return env[key] })
}

func (c *Config) apply(getenv func(string) string) error {
	if format := getenv("RESPCONV_FORMAT"); format != "" {
		if _, err := LookupFormat(format); err != nil {
			return err
		}
		c.Format = format
	}
	if depth := getenv("RESPCONV_MAX_DEPTH"); depth != "" {
		n, err := strconv.Atoi(depth)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid RESPCONV_MAX_DEPTH %q", depth)
		}
		c.MaxDepth = n
	}
	if level := getenv("RESPCONV_LOG_LEVEL"); level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid RESPCONV_LOG_LEVEL %q: %w", level, err)
		}
		c.LogLevel = l
	}
	if prompt := getenv("RESPCONV_PROMPT"); prompt != "" {
		c.Prompt = prompt
	}
	return nil
}

// NewLogger returns a text logger writing to w that drops records below level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
