package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Remote compile service
	CompileServiceURL string
	CompileTimeout    time.Duration
	// Real-time log channel (WebSocket endpoint, session id is appended as ?projectId=)
	LogStreamURL string
	// Editor content commits are debounced by this quiet period
	EditDebounce time.Duration
	// SSE keep-alive interval for log streams
	SSEKeepAlive time.Duration
	// Optional file logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:5173"),
		CompileServiceURL: getEnv("COMPILE_SERVICE_URL", "http://localhost:3000"),
		CompileTimeout:    getDuration("COMPILE_TIMEOUT", DefaultCompileTimeout),
		LogStreamURL:      getEnv("LOG_STREAM_URL", "ws://localhost:3001/ws"),
		EditDebounce:      getDuration("EDIT_DEBOUNCE", DefaultEditDebounce),
		SSEKeepAlive:      getDuration("SSE_KEEPALIVE", 10*time.Second),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses Go duration syntax ("500ms", "2m"); invalid values fall back to the default
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
