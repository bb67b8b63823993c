// Package config provides configuration for the router.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Config holds the router configuration.
type Config struct {
	// Server settings
	HTTPPort  int
	RoutePath string

	// Database
	DatabaseURL string

	// Logging
	PrintLog      bool
	LogTimestamps bool

	// Event watcher WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Router defaults, optionally layered with DefaultsFile
	Defaults     Defaults
	DefaultsFile string
}

// Defaults are the router-level options applied under every call-site option.
// They are fixed when the engine is created.
type Defaults struct {
	// Timeout is the input deadline of a suspended read. Zero selects the
	// library default; a negative value disables deadlines.
	Timeout time.Duration

	// RemoveInvalidChars authorizes stripping of reserved characters when
	// neither the message nor the operation decides.
	RemoveInvalidChars bool

	// ValNamePrefix names reads without an explicit ValName.
	ValNamePrefix string

	Tap           domain.TapOptions
	Stt           domain.SttOptions
	Record        domain.RecordOptions
	IDListMessage domain.IDListMessageOptions
}

// DefaultValNamePrefix produces val_1, val_2, ...
const DefaultValNamePrefix = "val_"

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:      getEnvInt("HTTP_PORT", 9770),
		RoutePath:     getEnv("ROUTE_PATH", "/"),
		DatabaseURL:   getEnv("DATABASE_URL", ":memory:"),
		PrintLog:      getEnvBool("PRINT_LOG", true),
		LogTimestamps: getEnvBool("LOG_TIMESTAMPS", false),
		DefaultsFile:  getEnv("ROUTER_DEFAULTS_FILE", ""),

		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 4096)),

		Defaults: Defaults{
			Timeout:            time.Duration(getEnvInt("CALL_TIMEOUT_MS", 300000)) * time.Millisecond,
			RemoveInvalidChars: getEnvBool("REMOVE_INVALID_CHARS", false),
			ValNamePrefix:      getEnv("VAL_NAME_PREFIX", DefaultValNamePrefix),
		},
	}
	return cfg
}

// WithDefaults returns d with library values filled in for unset fields.
func (d Defaults) WithDefaults() Defaults {
	if d.ValNamePrefix == "" {
		d.ValNamePrefix = DefaultValNamePrefix
	}
	return d
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
