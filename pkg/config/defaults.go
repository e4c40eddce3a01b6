package config

const (
	defaultBaseURL = "https://api.deepseek.com"
	defaultModel   = "deepseek-chat"

	defaultChatTemperature = 0.7
	defaultChatMaxTokens   = 500

	defaultCompletionTemperature  = 0.7
	defaultCompletionMaxTokens    = 1024
	defaultCompletionSystemPrompt = "你是一个聪明的 AI 助手"

	defaultVectorProvider = "sqlite"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "bge-m3"
	defaultEmbeddingDimensions = 1024

	defaultDataDir = "data"
	defaultTopK    = 2
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		LLM: LLMConfig{
			BaseURL: defaultBaseURL,
			Model:   defaultModel,
		},
		Chat: ChatConfig{
			Temperature: defaultChatTemperature,
			MaxTokens:   defaultChatMaxTokens,
			Render:      true,
		},
		Completion: CompletionConfig{
			Temperature:  defaultCompletionTemperature,
			MaxTokens:    defaultCompletionMaxTokens,
			SystemPrompt: defaultCompletionSystemPrompt,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Query: QueryConfig{
			DataDir:   defaultDataDir,
			TopK:      defaultTopK,
			Streaming: true,
		},
	}
}
