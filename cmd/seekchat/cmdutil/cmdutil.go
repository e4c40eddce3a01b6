// Package cmdutil holds the wiring shared by seekchat subcommands: logger,
// layered configuration and the DeepSeek client.
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/seekchat/pkg/config"
	"github.com/papercomputeco/seekchat/pkg/credentials"
	"github.com/papercomputeco/seekchat/pkg/llm/deepseek"
	"github.com/papercomputeco/seekchat/pkg/logger"
)

// ConfigDir returns the --config-dir override, if any.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}

// Logger returns a pretty logger on the command's stderr. --debug lowers
// the level to debug.
func Logger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
}

// TeeJSON fans records out to base and to a JSON logger writing to w.
func TeeJSON(cmd *cobra.Command, base *slog.Logger, w io.Writer) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.Multi(base, logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriter(w),
	))
}

// Viper loads defaults, config.toml and SEEKCHAT_* variables, then binds the
// command's registered flags named by keys on top.
func Viper(cmd *cobra.Command, keys ...string) (*viper.Viper, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, keys)
	return v, nil
}

// NewDeepSeekClient resolves the API key (flag, DEEPSEEK_API_KEY, then
// credentials.toml) and builds a client for llm.base_url. A missing key
// fails here with deepseek.ErrMissingAPIKey, before any request is made.
func NewDeepSeekClient(cmd *cobra.Command, v *viper.Viper, apiKey string, log *slog.Logger) (*deepseek.Client, error) {
	mgr, err := credentials.NewManager(ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	key, source, err := mgr.ResolveKey(credentials.DeepSeek, apiKey)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	client, err := deepseek.NewClient(deepseek.Config{
		APIKey:  key,
		BaseURL: v.GetString("llm.base_url"),
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("created completion client",
		"base_url", client.BaseURL(),
		"key_source", string(source),
	)
	return client, nil
}

// AddAPIKeyFlag registers --api-key. It is kept out of the config registry
// so keys never land in config.toml.
func AddAPIKeyFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "api-key", "", "DeepSeek API key (default: $DEEPSEEK_API_KEY or stored credentials)")
}
