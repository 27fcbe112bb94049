package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Bitlatte/portfolio/internal/logger"
)

// EnvPrefix is prepended to every environment override, e.g.
// PORTFOLIO_SERVER_ADDR for server.addr.
const EnvPrefix = "PORTFOLIO"

// Load reads config.yaml from the working directory, or cfgFile when given,
// layers environment overrides and defaults underneath, and validates the result.
// A missing config.yaml is not an error; a missing explicit cfgFile is.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("no config file found, using defaults and environment")
	} else {
		logger.Debug("using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
