package credentials

// Credentials is the content of credentials.toml.
//
//	version = 0
//
//	[providers.deepseek]
//	api_key = "sk-..."
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential holds the API key for a single provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}
