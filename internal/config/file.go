package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileValues is the YAML shape of an optional config file. Unset fields
// fall back to the env-var defaults.
type fileValues struct {
	AppName     string `yaml:"app_name"`
	APIBaseURL  string `yaml:"api_base_url"`
	HomeCountry string `yaml:"home_country"`
	Currency    string `yaml:"currency"`
	Poll        struct {
		MaxAttempts     int `yaml:"max_attempts"`
		IntervalSeconds int `yaml:"interval_seconds"`
		ErrorBudget     int `yaml:"error_budget"`
	} `yaml:"poll"`
}

type fileConfig struct {
	mainConfig
	values fileValues
}

var _ Config = fileConfig{}

// Load reads a YAML config file layered over the env-var defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[config.Load] read file")
	}
	var values fileValues
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(err, "[config.Load] parse yaml")
	}
	return fileConfig{values: values}, nil
}

func (c fileConfig) GetAppName() string {
	if c.values.AppName != "" {
		return c.values.AppName
	}
	return c.mainConfig.GetAppName()
}

func (c fileConfig) GetAPIBaseURL() string {
	if c.values.APIBaseURL != "" {
		return c.values.APIBaseURL
	}
	return c.mainConfig.GetAPIBaseURL()
}

func (c fileConfig) GetHomeCountry() string {
	if c.values.HomeCountry != "" {
		return c.values.HomeCountry
	}
	return c.mainConfig.GetHomeCountry()
}

func (c fileConfig) GetCurrency() string {
	if c.values.Currency != "" {
		return c.values.Currency
	}
	return c.mainConfig.GetCurrency()
}

func (c fileConfig) GetPollMaxAttempts() int {
	if c.values.Poll.MaxAttempts > 0 {
		return c.values.Poll.MaxAttempts
	}
	return c.mainConfig.GetPollMaxAttempts()
}

func (c fileConfig) GetPollInterval() time.Duration {
	if c.values.Poll.IntervalSeconds > 0 {
		return time.Duration(c.values.Poll.IntervalSeconds) * time.Second
	}
	return c.mainConfig.GetPollInterval()
}

func (c fileConfig) GetPollErrorBudget() int {
	if c.values.Poll.ErrorBudget > 0 {
		return c.values.Poll.ErrorBudget
	}
	return c.mainConfig.GetPollErrorBudget()
}
