// Package indexcmder provides the index command, which loads a directory of
// documents into the configured vector store.
package indexcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/seekchat/cmd/seekchat/cmdutil"
	"github.com/papercomputeco/seekchat/cmd/seekchat/pipeline"
	"github.com/papercomputeco/seekchat/pkg/cliui"
)

type indexCommander struct {
	dir     string
	watch   bool
	logFile string

	flags pipeline.FlagValues

	v      *viper.Viper
	out    io.Writer
	logger *slog.Logger
}

const indexLongDesc string = `Index a directory of documents for "seekchat query".

Every .txt, .md and .markdown file below the directory (hidden files and
directories are skipped) is split into overlapping chunks, embedded with the
configured embedding provider and written to the vector store. Re-indexing a
file replaces its earlier chunks.

With --watch the command keeps running and re-indexes files as they change,
dropping files that are removed.

Examples:
  seekchat index
  seekchat index ./notes
  seekchat index ./notes --watch
  seekchat index ./notes --watch --log-file index.log
  seekchat index --vector-store-provider chroma --vector-store-target http://localhost:8000`

const indexShortDesc string = "Index documents into the vector store"

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cmdutil.Viper(cmd, pipeline.Flags...)
			if err != nil {
				return err
			}
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.dir = cmder.v.GetString("query.data_dir")
			if len(args) == 1 {
				cmder.dir = args[0]
			}
			cmder.out = cmd.OutOrStdout()
			cmder.logger = cmdutil.Logger(cmd)

			if cmder.logFile != "" {
				f, err := os.OpenFile(cmder.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				cmder.logger = cmdutil.TeeJSON(cmd, cmder.logger, f)
			}

			stack, err := pipeline.Open(cmder.v, cmdutil.ConfigDir(cmd), cmder.logger)
			if err != nil {
				return err
			}
			defer stack.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, stack)
		},
	}

	pipeline.AddFlags(cmd, &cmder.flags)
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Keep running and re-index files as they change")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON log records to this file")

	return cmd
}

func (c *indexCommander) run(ctx context.Context, stack *pipeline.Stack) error {
	fmt.Fprintln(c.out)

	err := cliui.Step(c.out, fmt.Sprintf("Indexing %s", cliui.NameStyle.Render(c.dir)), func() error {
		stats, err := stack.IndexDir(ctx, c.dir)
		if err != nil {
			return err
		}
		c.logger.Info("indexed documents", "dir", c.dir, "documents", stats.Documents, "chunks", stats.Chunks)
		return nil
	})
	if err != nil {
		return err
	}

	if !c.watch {
		fmt.Fprintln(c.out)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("Watching for changes. Press Ctrl+C to stop."))

	return stack.Watch(ctx, c.dir, func(e pipeline.Event) {
		switch {
		case e.Err != nil:
			c.logger.Warn("re-index failed", "path", e.Path, "error", e.Err)
			fmt.Fprintf(c.out, "  %s %s %v\n", cliui.FailMark, e.Path, e.Err)
		case e.Removed:
			c.logger.Debug("dropped document", "path", e.Path)
			fmt.Fprintf(c.out, "  %s %s %s\n", cliui.SuccessMark, e.Path, cliui.DimStyle.Render("(removed)"))
		default:
			c.logger.Debug("re-indexed document", "path", e.Path, "chunks", e.Stats.Chunks)
			fmt.Fprintf(c.out, "  %s %s %s\n", cliui.SuccessMark, e.Path,
				cliui.DimStyle.Render(fmt.Sprintf("(%d chunks)", e.Stats.Chunks)))
		}
	})
}
