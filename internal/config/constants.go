package config

// Application constants
const (
	AppName    = "Side by Side"
	AppVersion = "1.2.0"
	AppVendor  = "New Well Technologies"

	// EnvPrefix namespaces every environment variable, e.g. SBS_SERVER_PORT.
	EnvPrefix = "SBS"

	// ConfigFileEnv names an explicit YAML config file.
	ConfigFileEnv = "SBS_CONFIG_FILE"
)
