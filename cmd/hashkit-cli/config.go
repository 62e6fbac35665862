package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI configuration.
type Config struct {
	Addr              string
	ConnectTimeout    time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	KeepAliveInterval time.Duration
	LogFile           string
}

// configFile is the YAML form of Config. Durations are parsed from
// time.ParseDuration strings ("5s", "250ms").
type configFile struct {
	Addr              string `yaml:"addr"`
	ConnectTimeout    string `yaml:"connect_timeout"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	KeepAliveInterval string `yaml:"keepalive_interval"`
	LogFile           string `yaml:"log_file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr: "localhost:6379",
	}
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if cf.Addr != "" {
		cfg.Addr = cf.Addr
	}
	cfg.LogFile = cf.LogFile

	for _, d := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{cf.ConnectTimeout, "connect_timeout", &cfg.ConnectTimeout},
		{cf.ReadTimeout, "read_timeout", &cfg.ReadTimeout},
		{cf.WriteTimeout, "write_timeout", &cfg.WriteTimeout},
		{cf.KeepAliveInterval, "keepalive_interval", &cfg.KeepAliveInterval},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid duration %q", d.name, d.raw)
		}
		*d.dst = parsed
	}

	return cfg, nil
}
