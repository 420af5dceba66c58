package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	MIN_UNIT_SERVICE_TIMEOUT_MILLIS = 100
)

type Config struct {
	LogLevel      zapcore.Level
	Port          uint                `mapstructure:"port"`
	HttpLog       bool                `mapstructure:"http_log"`
	Storage       StorageConfig       `mapstructure:"storage"`
	MQTT          MQTTConfig          `mapstructure:"mqtt"`
	Settings      SettingsConfig      `mapstructure:"settings"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	UnitService   UnitServiceConfig   `mapstructure:"unit_service"`
}

type StorageConfig struct {
	Backend        string
	SQLitePath     string `mapstructure:"sqlite_path"`
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`
	TimeoutMillis  uint32 `mapstructure:"timeout_millis"`
	SettingsKey    string `mapstructure:"settings_key"`
}

type MQTTConfig struct {
	Enable    bool
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

type SettingsConfig struct {
	DefaultVolume int `mapstructure:"default_volume"`
}

type NotificationsConfig struct {
	ResolvedIds []int `mapstructure:"resolved_ids"`
}

type UnitServiceConfig struct {
	// empty means the built-in mock units are served
	BaseURL       string `mapstructure:"base_url"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	if !baseTopicRegexp.MatchString(lowerBaseTopic) {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// Validate checks bounds and normalizes the MQTT base topic in place.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Backend {
	case "memory", "redis":
	case "sqlite":
		if cfg.Storage.SQLitePath == "" {
			return errors.New("config param storage.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("config param storage.backend must be one of memory, sqlite, redis (got %q)", cfg.Storage.Backend)
	}

	if cfg.MQTT.Enable {
		baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
		if err != nil {
			return errors.New("invalid base topic. can only contain letters, numbers and underscores")
		}
		cfg.MQTT.BaseTopic = baseTopic
	}

	if cfg.Settings.DefaultVolume < 0 || cfg.Settings.DefaultVolume > 100 {
		return errors.New("config param settings.default_volume should be in [0, 100]")
	}
	if cfg.UnitService.TimeoutMillis < MIN_UNIT_SERVICE_TIMEOUT_MILLIS {
		return fmt.Errorf("config param unit_service.timeout_millis should be >= %dms", MIN_UNIT_SERVICE_TIMEOUT_MILLIS)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (cfg Config) Redacted() Config {
	if cfg.MQTT.Username != "" {
		cfg.MQTT.Username = "*redacted*"
	}
	if cfg.MQTT.Password != "" {
		cfg.MQTT.Password = "*redacted*"
	}
	if cfg.Storage.RedisPassword != "" {
		cfg.Storage.RedisPassword = "*redacted*"
	}
	return cfg
}
