// Package seekchatcmder
package seekchatcmder

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/seekchat/cmd/seekchat/auth"
	chatcmder "github.com/papercomputeco/seekchat/cmd/seekchat/chat"
	configcmder "github.com/papercomputeco/seekchat/cmd/seekchat/config"
	indexcmder "github.com/papercomputeco/seekchat/cmd/seekchat/index"
	querycmder "github.com/papercomputeco/seekchat/cmd/seekchat/query"
	versioncmder "github.com/papercomputeco/seekchat/cmd/version"
)

const seekchatLongDesc string = `seekchat talks to DeepSeek from your terminal.

Chat interactively, or ask questions about your own documents:
  seekchat chat              Start a conversation
  seekchat index [dir]       Index documents into the vector store
  seekchat query <question>  Answer a question from indexed documents
  seekchat auth              Store your DeepSeek API key
  seekchat config            Manage persistent configuration

A .env file in the working directory is loaded before any command runs.`

const seekchatShortDesc string = "seekchat - DeepSeek chat and document Q&A"

func NewSeekchatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seekchat",
		Short:        seekchatShortDesc,
		Long:         seekchatLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Variables already set in the environment win over .env.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading .env: %w", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .seekchat/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
