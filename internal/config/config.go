// Package config loads settings for the srfax command line tool and the
// fake service from an optional srfax.yml and SRFAX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SRFAX_CLIENT_TIMEOUT.
const EnvPrefix = "SRFAX"

type Config struct {
	Account Account `mapstructure:"account"`
	Client  Client  `mapstructure:"client"`
	Twin    Twin    `mapstructure:"twin"`
	Log     Log     `mapstructure:"log"`
}

type Account struct {
	AccessID       string `mapstructure:"access_id"`
	AccessPassword string `mapstructure:"access_password"`
	CallerID       string `mapstructure:"caller_id"`
	SenderEmail    string `mapstructure:"sender_email"`
	AccountCode    string `mapstructure:"account_code"`
}

type Client struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Twin configures cmd/srfax-twin.
type Twin struct {
	Addr            string        `mapstructure:"addr"`
	StartID         int64         `mapstructure:"start_id"`
	Latency         time.Duration `mapstructure:"latency"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]any{
	"account.access_id":       "",
	"account.access_password": "",
	"account.caller_id":       "",
	"account.sender_email":    "",
	"account.account_code":    "",
	"client.base_url":         "https://www.srfax.com/SRF_SecWebSvc.php",
	"client.timeout":          30 * time.Second,
	"twin.addr":               ":8085",
	"twin.start_id":           1,
	"twin.latency":            time.Duration(0),
	"twin.shutdown_timeout":   5 * time.Second,
	"log.level":               "info",
	"log.development":         false,
}

// Short names for the account settings, as used in .env files.
var accountEnv = map[string]string{
	"account.access_id":       "SRFAX_ACCESS_ID",
	"account.access_password": "SRFAX_ACCESS_PASSWORD",
	"account.caller_id":       "SRFAX_CALLER_ID",
	"account.sender_email":    "SRFAX_SENDER_EMAIL",
	"account.account_code":    "SRFAX_ACCOUNT_CODE",
}

// Load reads configuration. An empty path looks for srfax.yml in the
// working directory and ./config, and a missing file is not an error.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range accountEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err) //coverage:ignore
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		v.SetConfigName("srfax")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the client needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Account.AccessID == "" {
		errs = append(errs, errors.New("account.access_id (SRFAX_ACCESS_ID) is required"))
	}
	if c.Account.AccessPassword == "" {
		errs = append(errs, errors.New("account.access_password (SRFAX_ACCESS_PASSWORD) is required"))
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client.timeout must be positive, got %s", c.Client.Timeout))
	}
	return errors.Join(errs...)
}
