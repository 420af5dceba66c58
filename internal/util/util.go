package util

import (
	"thermacore/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Port:     8080,
		Storage: config.StorageConfig{
			Backend: "memory",
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "thermacore",
		},
		Settings: config.SettingsConfig{
			DefaultVolume: 35,
		},
		Notifications: config.NotificationsConfig{
			ResolvedIds: []int{3, 4, 5},
		},
		UnitService: config.UnitServiceConfig{
			TimeoutMillis: 2000,
		},
	}
}
