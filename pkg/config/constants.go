package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "ONEROOM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ONEROOM_DB_DSN"
	EnvDBHost = "ONEROOM_DB_HOST"
	EnvDBUser = "ONEROOM_DB_USER"
	EnvDBName = "ONEROOM_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
