package config

const (
	EnvPrefix = "CONSIGND"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "CONSIGND_APP_ENV"
	EnvPort            = "CONSIGND_APP_PORT"
	EnvRedisURL        = "CONSIGND_REDIS_URL"
	EnvGCPProjectID    = "CONSIGND_GCP_PROJECT_ID"
	EnvStakePercentage = "CONSIGND_COMMERCE_STAKE_PERCENTAGE"
	EnvCartTTL         = "CONSIGND_COMMERCE_CART_TTL"
)
