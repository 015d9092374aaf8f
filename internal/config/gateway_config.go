package config

import "time"

type GatewayConfig interface {
	GetRequestTimeout() time.Duration
	GetRateLimitPerSecond() int
	GetRateLimitBurst() int
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

func (Gateway) GetRequestTimeout() time.Duration {
	return time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second
}

func (Gateway) GetRateLimitPerSecond() int {
	return getEnvInt("RATE_LIMIT_PER_SECOND", 20)
}

func (Gateway) GetRateLimitBurst() int {
	return getEnvInt("RATE_LIMIT_BURST", 40)
}
