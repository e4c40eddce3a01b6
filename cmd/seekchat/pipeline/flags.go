package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/seekchat/pkg/config"
)

// Flags are the registry keys of the embedding and vector store flags
// shared by index and query.
var Flags = []string{
	config.FlagSQLite,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

// FlagValues receives the values of Flags. Commands read the effective
// settings through viper; these are only flag targets.
type FlagValues struct {
	SQLitePath          string
	VectorProvider      string
	VectorTarget        string
	EmbeddingProvider   string
	EmbeddingTarget     string
	EmbeddingModel      string
	EmbeddingDimensions uint
}

// AddFlags registers Flags on cmd.
func AddFlags(cmd *cobra.Command, f *FlagValues) {
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.SQLitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &f.VectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &f.VectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &f.EmbeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &f.EmbeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &f.EmbeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &f.EmbeddingDimensions)
}
