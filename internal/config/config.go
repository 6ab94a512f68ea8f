package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/cifar-api/internal/logging"
	"github.com/Brownie44l1/cifar-api/internal/model"
)

// Config holds everything the server needs at startup.
type Config struct {
	Model model.InferenceConfig `yaml:"model"`
	HTTP  struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
}

func Default() *Config {
	c := &Config{
		Model: model.DefaultInferenceConfig(),
		Log: logging.Config{
			Level:    "info",
			Encoding: "console",
		},
	}
	c.HTTP.Port = 8080
	return c
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	c.Model.ModelPath = envStr("MODEL_PATH", c.Model.ModelPath)
	c.Model.Device = envStr("MODEL_DEVICE", c.Model.Device)
	c.Model.LibraryPath = envStr("ORT_LIBRARY_PATH", c.Model.LibraryPath)
	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
	c.HTTP.Port = envInt("PORT", c.HTTP.Port)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Model.ModelPath == "" {
		return errors.New("model path is required")
	}
	if c.Model.Device == "" {
		return errors.New("model device is required")
	}
	if c.Model.InputName == "" || c.Model.OutputName == "" {
		return errors.New("model input and output names are required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTP.Port)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
