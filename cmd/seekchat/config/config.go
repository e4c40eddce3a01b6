// Package configcmder provides the config command for managing persistent
// seekchat configuration stored in the .seekchat/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent seekchat configuration.

Configuration is stored as config.toml in the .seekchat/ directory and provides
default values for command flags. CLI flags and SEEKCHAT_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  llm.base_url, llm.model,
  chat.temperature, chat.max_tokens, chat.system_prompt, chat.render,
  completion.temperature, completion.max_tokens, completion.system_prompt,
  storage.sqlite_path,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  query.data_dir, query.top_k, query.streaming

Use subcommands to get, set, or list configuration values:
  seekchat config set <key> <value>    Set a configuration value
  seekchat config get <key>            Get a configuration value
  seekchat config list                 List all configuration values

Examples:
  seekchat config set llm.model deepseek-reasoner
  seekchat config set chat.temperature 1.0
  seekchat config get query.top_k
  seekchat config list`

const configShortDesc string = "Manage persistent seekchat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
