package config

// ProviderConfig declares one embed provider for the dispatcher.
type ProviderConfig struct {
	Name  string   `mapstructure:"name"`
	Hosts []string `mapstructure:"hosts"`
	// Mode is "scrape" or "unframe".
	Mode string `mapstructure:"mode"`
}

// ProvidersConfig is the content of providers.yaml.
type ProvidersConfig struct {
	Providers []ProviderConfig `mapstructure:"providers"`
}
