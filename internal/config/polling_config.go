package config

import (
	"strconv"
	"time"
)

type PollingConfig interface {
	GetPollMaxAttempts() int
	GetPollInterval() time.Duration
	GetPollErrorBudget() int
}

type Polling struct{}

var _ PollingConfig = Polling{}

func (Polling) GetPollMaxAttempts() int {
	return getEnvInt("POLL_MAX_ATTEMPTS", 36)
}

func (Polling) GetPollInterval() time.Duration {
	return time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)) * time.Second
}

func (Polling) GetPollErrorBudget() int {
	return getEnvInt("POLL_ERROR_BUDGET", 3)
}

func getEnvInt(envVar string, defaultValue int) int {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
