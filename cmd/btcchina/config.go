package main

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"btcchina/pkg/core"
)

// envConfig is the CLI configuration read from the environment.
type envConfig struct {
	AccessKey      string        `env:"BTCCHINA_ACCESS_KEY" env-description:"API access key"`
	SecretKey      string        `env:"BTCCHINA_SECRET_KEY" env-description:"API secret key"`
	ServerURL      string        `env:"BTCCHINA_SERVER" env-default:"https://api.btcchina.com" env-description:"API base URL"`
	DataURL        string        `env:"BTCCHINA_DATA_SERVER" env-default:"https://data.btcchina.com" env-description:"trades mirror base URL"`
	Timeout        time.Duration `env:"BTCCHINA_TIMEOUT" env-default:"30s" env-description:"public request timeout"`
	PrivateTimeout time.Duration `env:"BTCCHINA_PRIVATE_TIMEOUT" env-default:"0s" env-description:"private request timeout, 0 for none"`
	LogLevel       string        `env:"BTCCHINA_LOG_LEVEL" env-default:"info" env-description:"trace, debug, info, warn, error or disabled"`
}

func loadConfig() (*core.Config, error) {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return env.toCore(), nil
}

func (e envConfig) toCore() *core.Config {
	config := core.DefaultConfig().
		WithServerURL(e.ServerURL).
		WithTimeout(e.Timeout).
		WithPrivateTimeout(e.PrivateTimeout)
	config.DataURL = e.DataURL
	config.LogLevel = e.LogLevel
	if e.AccessKey != "" || e.SecretKey != "" {
		config.WithCredentials(e.AccessKey, e.SecretKey)
	}
	return config
}

func configUsage() string {
	header := "Environment variables:"
	desc, err := cleanenv.GetDescription(&envConfig{}, &header)
	if err != nil {
		return ""
	}
	return desc
}
