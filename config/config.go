package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/ncobase/keyset/validator"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding file settings,
// e.g. KEYSET_DATA_MONGODB_MASTER_URI.
const EnvPrefix = "KEYSET"

var mu sync.Mutex

// Config represents the configuration implementation.
type Config struct {
	AppName  string `validate:"required"`
	RunMode  string `validate:"omitempty,oneof=debug release test"`
	Host     string
	Port     int          `validate:"gte=0,lte=65535"`
	Logger   *Logger      `validate:"required"`
	Data     *Data        `validate:"required"`
	Paging   *Paging      `validate:"required"`
	Observes *Observes    `validate:"required"`
	Viper    *viper.Viper `validate:"-"`
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads the configuration from the file. An empty path searches
// the usual locations for a file named "config"; when none exists the
// defaults and environment are used.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/keyset")
		v.AddConfigPath("$HOME/.keyset")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

// fromViper builds and validates a Config from v.
func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName:  v.GetString("app_name"),
		RunMode:  v.GetString("run_mode"),
		Host:     v.GetString("server.host"),
		Port:     v.GetInt("server.port"),
		Logger:   getLoggerConfig(v),
		Data:     getDataConfig(v),
		Paging:   getPagingConfig(v),
		Observes: getObservesConfig(v),
		Viper:    v,
	}

	if err := validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %s: %w", validator.Join(validator.Messages(cfg, err)), err)
	}
	return cfg, nil
}

// setDefaults registers the values used when neither file nor environment
// provide one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "keyset")
	v.SetDefault("run_mode", "release")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3000)
	v.SetDefault("logger.level", 4)
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("data.mongodb.database", "keyset")
	v.SetDefault("data.mongodb.strategy", "round_robin")
	v.SetDefault("paging.sort_key", "_id")
	v.SetDefault("paging.default_limit", 10)
}

// Watch watches the configuration file and calls callback with the reloaded
// configuration whenever it changes. Reload failures are reported to onError
// and the previous configuration stays in effect.
func (c *Config) Watch(callback func(*Config), onError func(error)) {
	v := c.Viper
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		cfg, err := fromViper(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to reload config: %w", err))
			}
			return
		}
		callback(cfg)
	})
	v.WatchConfig()
}
