// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	TextGen   TextGenConfig
	Recommend RecommendConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage paths.
type DataConfig struct {
	// BasePath is the root directory for all on-disk state.
	BasePath string
	// DatabasePath is the SQLite database file (default: {base}/writha.db).
	DatabasePath string
	// ReaderStatePath is the Badger directory for device reader state (default: {base}/reader-state).
	ReaderStatePath string
	// SearchIndexPath is the Bleve index directory (default: {base}/search.bleve).
	SearchIndexPath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes, hex-encoded in env)
	AccessTokenKey []byte
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
}

// TextGenConfig holds text-generation (Groq) configuration.
type TextGenConfig struct {
	// APIKey authorizes requests; empty disables personalized reranking.
	APIKey string
	// BaseURL of the OpenAI-compatible endpoint (default: https://api.groq.com/openai/v1)
	BaseURL string
	// Model name (default: llama-3.1-8b-instant)
	Model string
	// Timeout bounds a single completion call (default: 8s).
	// Expiry is treated as a reranking failure, never a user-visible error.
	Timeout time.Duration
}

// RecommendConfig holds recommendation pipeline tuning.
type RecommendConfig struct {
	// MaxResults is the shortlist size (default: 4).
	MaxResults int
	// CandidatePoolSize is how many stories to fetch before reranking (default: 10).
	CandidatePoolSize int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	basePath := flag.String("data-path", "", "Base path for on-disk state")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	textgenModel := flag.String("textgen-model", "", "Text generation model name")
	textgenTimeout := flag.String("textgen-timeout", "", "Text generation call timeout (default: 8s)")
	envFile := flag.String("env-file", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if present (lowest precedence among explicit sources).
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}

	cfg.App.Environment = firstNonEmpty(*env, os.Getenv("WRITHA_ENV"), "development")
	cfg.Logger.Level = firstNonEmpty(*logLevel, os.Getenv("WRITHA_LOG_LEVEL"), "info")

	base := firstNonEmpty(*basePath, os.Getenv("WRITHA_DATA_PATH"), "./data")
	cfg.Data.BasePath = base
	cfg.Data.DatabasePath = firstNonEmpty(os.Getenv("WRITHA_DB_PATH"), filepath.Join(base, "writha.db"))
	cfg.Data.ReaderStatePath = firstNonEmpty(os.Getenv("WRITHA_READER_STATE_PATH"), filepath.Join(base, "reader-state"))
	cfg.Data.SearchIndexPath = firstNonEmpty(os.Getenv("WRITHA_SEARCH_INDEX_PATH"), filepath.Join(base, "search.bleve"))

	cfg.Server.Port = firstNonEmpty(*serverPort, os.Getenv("WRITHA_PORT"), "8080")

	var err error
	if cfg.Server.ReadTimeout, err = parseDuration(firstNonEmpty(*readTimeout, os.Getenv("WRITHA_READ_TIMEOUT")), 15*time.Second); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDuration(firstNonEmpty(*writeTimeout, os.Getenv("WRITHA_WRITE_TIMEOUT")), 15*time.Second); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDuration(firstNonEmpty(*idleTimeout, os.Getenv("WRITHA_IDLE_TIMEOUT")), 60*time.Second); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if origins := os.Getenv("WRITHA_CORS_ORIGINS"); origins != "" {
		for o := range strings.SplitSeq(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, o)
			}
		}
	} else {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.Auth.AccessTokenKey, err = loadAccessTokenKey(); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenDuration, err = parseDuration(firstNonEmpty(*accessTokenDuration, os.Getenv("WRITHA_ACCESS_TOKEN_DURATION")), 15*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid access token duration: %w", err)
	}
	if cfg.Auth.RefreshTokenDuration, err = parseDuration(firstNonEmpty(*refreshTokenDuration, os.Getenv("WRITHA_REFRESH_TOKEN_DURATION")), 720*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid refresh token duration: %w", err)
	}

	cfg.TextGen.APIKey = os.Getenv("GROQ_API_KEY")
	cfg.TextGen.BaseURL = firstNonEmpty(os.Getenv("GROQ_BASE_URL"), "https://api.groq.com/openai/v1")
	cfg.TextGen.Model = firstNonEmpty(*textgenModel, os.Getenv("GROQ_MODEL"), "llama-3.1-8b-instant")
	if cfg.TextGen.Timeout, err = parseDuration(firstNonEmpty(*textgenTimeout, os.Getenv("GROQ_TIMEOUT")), 8*time.Second); err != nil {
		return nil, fmt.Errorf("invalid textgen timeout: %w", err)
	}

	cfg.Recommend.MaxResults = parseIntDefault(os.Getenv("WRITHA_RECOMMEND_MAX"), 4)
	cfg.Recommend.CandidatePoolSize = parseIntDefault(os.Getenv("WRITHA_RECOMMEND_POOL"), 10)

	return cfg, nil
}

// loadAccessTokenKey reads the PASETO key from the environment, generating an
// ephemeral one in development when unset (tokens won't survive restarts).
func loadAccessTokenKey() ([]byte, error) {
	keyHex := os.Getenv("WRITHA_ACCESS_TOKEN_KEY")
	if keyHex == "" {
		return nil, nil // auth layer generates an ephemeral key
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("WRITHA_ACCESS_TOKEN_KEY must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("WRITHA_ACCESS_TOKEN_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// loadEnvFile reads KEY=VALUE pairs from a file into the process environment.
// Existing environment variables are not overwritten.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string, falling back to def when empty.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// parseIntDefault parses an integer, falling back to def when empty or invalid.
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
