package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	ListenAddr    string `toml:"listen_addr"`
	EnableUDP     bool   `toml:"enable_udp"`
	Introspection bool   `toml:"introspection"`
	ServerIdent   string `toml:"server_ident"`
	MetricsAddr   string `toml:"metrics_addr"`
	LogLevel      string `toml:"log_level"`
}

func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":7070"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("server config missing listen_addr")
	}
	if !strings.Contains(cfg.ListenAddr, ":") {
		return fmt.Errorf("server config listen_addr must include a port")
	}
	if cfg.MetricsAddr != "" && !strings.Contains(cfg.MetricsAddr, ":") {
		return fmt.Errorf("server config metrics_addr must include a port")
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		return fmt.Errorf("server config missing log_level")
	}
	return nil
}
