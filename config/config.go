package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds persistent client settings stored at <profileDir>/chat.json.
// Every field can be overridden from the environment with the OSA_CHAT_
// prefix, e.g. OSA_CHAT_SERVER_URL or OSA_CHAT_RECONNECT_MAX_ATTEMPTS.
type Config struct {
	ServerURL        string          `mapstructure:"server_url"`
	Theme            string          `mapstructure:"theme"`
	LogLevel         string          `mapstructure:"log_level"`
	HandshakeTimeout time.Duration   `mapstructure:"handshake_timeout"`
	WordWrap         int             `mapstructure:"word_wrap"`
	Reconnect        ReconnectConfig `mapstructure:"reconnect"`
}

// ReconnectConfig is the reconnect backoff policy.
type ReconnectConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

const (
	filename  = "chat.json"
	envPrefix = "OSA_CHAT"
)

// Path returns the settings file inside profileDir.
func Path(profileDir string) string {
	return filepath.Join(profileDir, filename)
}

// Load reads <profileDir>/chat.json and the environment. A missing file is not
// an error; a file that cannot be parsed is.
func Load(profileDir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(Path(profileDir))
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to <profileDir>/chat.json, creating the directory if needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("mkdir profile dir: %w", err)
	}
	v := viper.New()
	v.SetConfigType("json")
	v.Set("server_url", cfg.ServerURL)
	v.Set("theme", cfg.Theme)
	v.Set("log_level", cfg.LogLevel)
	v.Set("handshake_timeout", cfg.HandshakeTimeout.String())
	v.Set("word_wrap", cfg.WordWrap)
	v.Set("reconnect.max_attempts", cfg.Reconnect.MaxAttempts)
	v.Set("reconnect.base_delay", cfg.Reconnect.BaseDelay.String())
	v.Set("reconnect.max_delay", cfg.Reconnect.MaxDelay.String())

	if err := v.WriteConfigAs(Path(profileDir)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		ServerURL:        "http://localhost:8000",
		LogLevel:         "info",
		HandshakeTimeout: 10 * time.Second,
		WordWrap:         100,
		Reconnect: ReconnectConfig{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server_url", d.ServerURL)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("handshake_timeout", d.HandshakeTimeout)
	v.SetDefault("word_wrap", d.WordWrap)
	v.SetDefault("reconnect.max_attempts", d.Reconnect.MaxAttempts)
	v.SetDefault("reconnect.base_delay", d.Reconnect.BaseDelay)
	v.SetDefault("reconnect.max_delay", d.Reconnect.MaxDelay)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
