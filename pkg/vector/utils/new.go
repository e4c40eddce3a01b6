// Package vectorutils builds a vector.Driver from configuration.
package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/seekchat/pkg/vector"
	"github.com/papercomputeco/seekchat/pkg/vector/chroma"
	"github.com/papercomputeco/seekchat/pkg/vector/inmemory"
	"github.com/papercomputeco/seekchat/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	// ProviderType is one of "sqlite" (default), "chroma" or "memory".
	ProviderType string

	// TargetURL is the Chroma server URL.
	TargetURL string

	// SQLitePath is the sqlite-vec database file.
	SQLitePath string

	// Dimensions must match the embedding model.
	Dimensions uint

	Logger *slog.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "", "sqlite", "sqlitevec":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.SQLitePath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewDriver(chroma.Config{
			URL: o.TargetURL,
		}, o.Logger)
	case "memory", "inmemory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
