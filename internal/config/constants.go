package config

const (
	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "HEALTH"

	// DefaultConfigFile is where Load looks for a YAML config when
	// HEALTH_CONFIG_FILE is unset.
	DefaultConfigFile = "config.yaml"

	// MinRollingWindow is the smallest rolling correlation window the
	// analysis accepts from configuration.
	MinRollingWindow = 2
)
