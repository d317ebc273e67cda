/*
Package configs loads the relay's configuration from environment variables.

It covers the server settings (environment, port, CORS origins), the room
lifecycle knobs (TTL, sweep interval), and the optional attachment store.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default room lifecycle values.
const (
	DefaultRoomTTL = 24 * time.Hour
)

// AppConfig holds everything the relay needs to run. All values come from
// environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Room Lifecycle Settings
	RoomTTL time.Duration

	// SweepInterval enables the periodic expiry sweep when positive; 0
	// leaves eviction purely lazy.
	SweepInterval time.Duration

	// S3 Storage Settings. Attachments are disabled when the bucket is
	// empty; the relay core runs unaffected.
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// AttachmentsEnabled reports whether an attachment store is configured.
func (c *AppConfig) AttachmentsEnabled() bool {
	return c.S3BucketName != ""
}

// LoadConfig reads and validates the configuration, applying defaults.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Room Lifecycle Settings ---
	ttlStr := os.Getenv("ROOM_TTL")
	if ttlStr == "" {
		cfg.RoomTTL = DefaultRoomTTL
	} else {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ROOM_TTL environment variable: %w", err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("ROOM_TTL must be positive, got %s", ttl)
		}
		cfg.RoomTTL = ttl
	}

	sweepStr := os.Getenv("SWEEP_INTERVAL")
	if sweepStr != "" {
		sweep, err := time.ParseDuration(sweepStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL environment variable: %w", err)
		}
		if sweep < 0 {
			return nil, fmt.Errorf("SWEEP_INTERVAL must not be negative, got %s", sweep)
		}
		cfg.SweepInterval = sweep
	}

	// --- S3 Storage Settings (optional) ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName != "" {
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required when S3_BUCKET_NAME is set")
		}
	}

	return cfg, nil
}
