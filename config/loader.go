package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"example.com/me/upstreamclient/internal/constants"
	"example.com/me/upstreamclient/internal/logger"
	"github.com/joho/godotenv"
)

// Default возвращает конфигурацию по умолчанию (без upstream)
func Default() *Config {
	return &Config{
		Upstreams: []UpstreamConfig{},
		Client: ClientConfig{
			TimeoutSeconds:         int(constants.DefaultClientTimeout.Seconds()),
			DialTimeoutSeconds:     int(constants.DefaultDialTimeout.Seconds()),
			IdleConnTimeoutSeconds: int(constants.DefaultIdleConnTimeout.Seconds()),
			MaxIdleConns:           constants.DefaultMaxIdleConns,
			UserAgent:              constants.DefaultUserAgent,
		},
	}
}

// Load загружает .env, конфигурацию из файла и переопределяет через CLI аргументы
func Load() (*Config, error) {
	if err := loadEnvFile(constants.DefaultEnvFile); err != nil {
		return nil, err
	}

	defaultConfigFile := constants.DefaultConfigFile
	if path := os.Getenv(constants.EnvConfigPath); path != "" {
		defaultConfigFile = path
	}

	var configFile string
	var timeout int

	flag.StringVar(&configFile, "config", defaultConfigFile, "Path to upstream configuration file")
	flag.IntVar(&timeout, "timeout", 0, "HTTP client timeout in seconds (overrides config)")
	flag.Parse()

	cfg, err := LoadFile(configFile)
	if err != nil {
		return nil, err
	}

	// Override via environment
	if isTrue(os.Getenv(constants.EnvDebug)) {
		cfg.Debug = true
	}

	// Override via CLI arguments
	if timeout > 0 {
		cfg.Client.TimeoutSeconds = timeout
	}

	return cfg, nil
}

// LoadFile загружает конфигурацию из файла поверх значений по умолчанию.
// Отсутствующий файл не является ошибкой.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	// Load from file if exists
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		logger.Debug(constants.ComponentConfig, "Loaded %d upstream(s) from %s", len(cfg.Upstreams), configFile)
	} else {
		logger.Debug(constants.ComponentConfig, "Config file %s not found, using defaults", configFile)
	}

	return cfg, nil
}

// loadEnvFile загружает переменные окружения из .env, если файл существует.
// Уже заданные переменные окружения не перезаписываются.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
