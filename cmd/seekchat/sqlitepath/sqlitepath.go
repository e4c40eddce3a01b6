// Package sqlitepath resolves the sqlite-vec database file used by the
// index and query commands.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/seekchat/pkg/dotdir"
)

// DefaultFileName is the database file created inside .seekchat/.
const DefaultFileName = "seekchat.sqlite"

// ResolveSQLitePath picks the database path. A configured path wins. Without
// an explicit config dir an existing $XDG_DATA_HOME/seekchat database is
// reused; otherwise the file lives in the resolved .seekchat/ directory,
// which is created when missing.
func ResolveSQLitePath(configured, configDir string) (string, error) {
	if p := strings.TrimSpace(configured); p != "" {
		return p, nil
	}

	if configDir == "" {
		if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
			candidate := filepath.Join(xdgHome, "seekchat", DefaultFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	dir, err := dotdir.NewManager().Ensure(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving sqlite path: %w", err)
	}

	return filepath.Join(dir, DefaultFileName), nil
}
