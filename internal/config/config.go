package config

type Config interface {
	EnvConfig
	CheckoutConfig
	PollingConfig
	GatewayConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Checkout
	Polling
	Gateway
}

func New() Config {
	return mainConfig{}
}
