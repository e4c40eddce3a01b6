// Package querycmder provides the query command, which answers a question
// from indexed documents.
package querycmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/seekchat/cmd/seekchat/cmdutil"
	"github.com/papercomputeco/seekchat/cmd/seekchat/pipeline"
	"github.com/papercomputeco/seekchat/pkg/cliui"
	"github.com/papercomputeco/seekchat/pkg/completion"
	"github.com/papercomputeco/seekchat/pkg/config"
	"github.com/papercomputeco/seekchat/pkg/rag"
	"github.com/papercomputeco/seekchat/pkg/utils"
)

type queryCommander struct {
	question string
	apiKey   string
	model    string
	baseURL  string
	dataDir  string
	topK     int
	stream   bool
	noIndex  bool
	sources  bool

	flags pipeline.FlagValues

	dataDirSet bool

	v      *viper.Viper
	out    io.Writer
	logger *slog.Logger
}

const queryLongDesc string = `Answer a question from your documents.

The question is embedded, the closest chunks are retrieved from the vector
store and sent to DeepSeek together with the question. The answer is
streamed as it is generated unless --stream=false is given.

Before answering, the --data directory (default "data", see query.data_dir)
is indexed when it exists. Use --no-index to query what is already stored,
for example after "seekchat index".

Examples:
  seekchat query "这些文档讲了什么？"
  seekchat query "How is the cache invalidated?" --data ./docs --top-k 4
  seekchat query "summarize the release notes" --no-index --stream=false`

const queryShortDesc string = "Answer a question from indexed documents"

var queryFlags = append([]string{
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagDataDir,
	config.FlagTopK,
	config.FlagStream,
}, pipeline.Flags...)

func NewQueryCmd() *cobra.Command {
	cmder := &queryCommander{}

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: queryShortDesc,
		Long:  queryLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cmdutil.Viper(cmd, queryFlags...)
			if err != nil {
				return err
			}
			cmder.v = v

			cmder.model = v.GetString("llm.model")
			cmder.dataDir = v.GetString("query.data_dir")
			cmder.topK = v.GetInt("query.top_k")
			cmder.stream = v.GetBool("query.streaming")
			cmder.dataDirSet = cmd.Flags().Changed("data")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = strings.TrimSpace(strings.Join(args, " "))
			if cmder.question == "" {
				return errors.New("question cannot be empty")
			}
			cmder.out = cmd.OutOrStdout()
			cmder.logger = cmdutil.Logger(cmd)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagDataDir, &cmder.dataDir)
	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &cmder.topK)
	config.AddBoolFlag(cmd, config.Flags, config.FlagStream, &cmder.stream)
	pipeline.AddFlags(cmd, &cmder.flags)
	cmdutil.AddAPIKeyFlag(cmd, &cmder.apiKey)
	cmd.Flags().BoolVar(&cmder.noIndex, "no-index", false, "Skip indexing the data directory")
	cmd.Flags().BoolVar(&cmder.sources, "sources", true, "Print the files the answer was built from")

	return cmd
}

func (c *queryCommander) run(ctx context.Context, cmd *cobra.Command) error {
	// The client is built first so a missing key fails before any indexing.
	client, err := cmdutil.NewDeepSeekClient(cmd, c.v, c.apiKey, c.logger)
	if err != nil {
		return err
	}

	stack, err := pipeline.Open(c.v, cmdutil.ConfigDir(cmd), c.logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	if err := c.indexData(ctx, stack); err != nil {
		return err
	}

	adapter := completion.New(completion.FromDeepSeek(client),
		completion.WithModel(c.model),
		completion.WithTemperature(c.v.GetFloat64("completion.temperature")),
		completion.WithMaxTokens(c.v.GetInt("completion.max_tokens")),
		completion.WithSystemPrompt(c.v.GetString("completion.system_prompt")),
		completion.WithLogger(c.logger),
	)

	engine, err := rag.NewQueryEngine(rag.QueryConfig{
		Embedder:     stack.Embedder,
		VectorDriver: stack.Driver,
		Completer:    adapter,
		TopK:         c.topK,
		Streaming:    c.stream,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}

	resp, err := engine.Query(ctx, c.question)
	if err != nil {
		return err
	}
	defer resp.Close()

	c.logger.Debug("query response", "kind", resp.Kind.String(), "sources", len(resp.Sources))

	fmt.Fprintln(c.out)
	if _, err := rag.Render(c.out, resp); err != nil {
		return fmt.Errorf("rendering answer: %w", err)
	}

	if c.sources && len(resp.Sources) > 0 {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.KeyStyle.Render("Sources:"))
		for _, src := range resp.Sources {
			preview := strings.Join(strings.Fields(src.Content), " ")
			fmt.Fprintf(c.out, "  %s %s  %s\n",
				cliui.SourceStyle.Render(src.Source),
				cliui.DimStyle.Render(fmt.Sprintf("(%.3f)", src.Score)),
				cliui.DimStyle.Render(utils.Truncate(preview, 60)),
			)
		}
	}
	fmt.Fprintln(c.out)

	return nil
}

// indexData indexes the data directory. A missing default directory is
// skipped; one given with --data must exist.
func (c *queryCommander) indexData(ctx context.Context, stack *pipeline.Stack) error {
	if c.noIndex || c.dataDir == "" {
		return nil
	}

	if _, err := os.Stat(c.dataDir); errors.Is(err, fs.ErrNotExist) && !c.dataDirSet {
		c.logger.Debug("data directory not found, skipping indexing", "dir", c.dataDir)
		return nil
	}

	stats, err := stack.IndexDir(ctx, c.dataDir)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", c.dataDir, err)
	}

	c.logger.Debug("indexed data directory", "dir", c.dataDir, "documents", stats.Documents, "chunks", stats.Chunks)
	return nil
}
