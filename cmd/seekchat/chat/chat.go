// Package chatcmder provides the chat command for an interactive
// conversation with the DeepSeek chat completions API.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/seekchat/cmd/seekchat/cmdutil"
	"github.com/papercomputeco/seekchat/pkg/cliui"
	"github.com/papercomputeco/seekchat/pkg/config"
	"github.com/papercomputeco/seekchat/pkg/session"
)

var (
	userPrompt      = cliui.UserStyle.Render("you> ")
	assistantPrompt = cliui.ReplyStyle.Render("assistant> ")
)

// resetCommand clears the transcript without leaving the loop.
const resetCommand = "/reset"

type chatCommander struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	system      string
	render      bool

	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	markdown bool

	v      *viper.Viper
	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with DeepSeek.

Every message is sent together with the whole conversation so far, so the
model sees the full context. If a request fails the unanswered message is
dropped from the conversation and you can simply try again.

Type exit, quit, /exit or 退出, enter an empty line or press Ctrl+D to
leave. /reset starts a new conversation.

The API key is read from --api-key, then DEEPSEEK_API_KEY (a .env file in
the working directory is loaded first), then the key stored by
"seekchat auth".

Examples:
  seekchat chat
  seekchat chat --model deepseek-reasoner --temperature 1.0
  seekchat chat --system "Answer in one sentence"`

const chatShortDesc string = "Interactive chat with DeepSeek"

var chatFlags = []string{
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagChatTemperature,
	config.FlagChatMaxTokens,
	config.FlagChatSystem,
	config.FlagRender,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cmdutil.Viper(cmd, chatFlags...)
			if err != nil {
				return err
			}
			cmder.v = v

			cmder.model = v.GetString("llm.model")
			cmder.baseURL = v.GetString("llm.base_url")
			cmder.temperature = v.GetFloat64("chat.temperature")
			cmder.maxTokens = v.GetInt("chat.max_tokens")
			cmder.system = v.GetString("chat.system_prompt")
			cmder.render = v.GetBool("chat.render")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.logger = cmdutil.Logger(cmd)
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			cmder.markdown = cmder.render && cliui.IsTerminal(cmder.out)

			client, err := cmdutil.NewDeepSeekClient(cmd, cmder.v, cmder.apiKey, cmder.logger)
			if err != nil {
				return err
			}

			sess := session.New(client,
				session.WithParams(session.Params{
					Model:       cmder.model,
					Temperature: cmder.temperature,
					MaxTokens:   cmder.maxTokens,
					System:      cmder.system,
				}),
				session.WithLogger(cmder.logger),
			)

			return cmder.run(cmd.Context(), sess)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddFloat64Flag(cmd, config.Flags, config.FlagChatTemperature, &cmder.temperature)
	config.AddIntFlag(cmd, config.Flags, config.FlagChatMaxTokens, &cmder.maxTokens)
	config.AddStringFlag(cmd, config.Flags, config.FlagChatSystem, &cmder.system)
	config.AddBoolFlag(cmd, config.Flags, config.FlagRender, &cmder.render)
	cmdutil.AddAPIKeyFlag(cmd, &cmder.apiKey)

	return cmd
}

func (c *chatCommander) run(ctx context.Context, sess *session.Session) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.banner(sess.Params())

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if session.IsExit(input) {
			break
		}
		if input == resetCommand {
			sess.Reset()
			fmt.Fprintf(c.out, "  %s %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render("New conversation"))
			continue
		}

		res := sess.Exchange(ctx, input)
		if !res.OK() {
			fmt.Fprintf(c.errOut, "  %s %v\n\n", cliui.FailMark, res.Err)
			continue
		}

		c.printReply(res.Reply.Content)

		if res.Usage != nil {
			c.logger.Debug("exchange usage",
				"prompt_tokens", res.Usage.PromptTokens,
				"completion_tokens", res.Usage.CompletionTokens,
				"turns", sess.Len(),
			)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

func (c *chatCommander) banner(p session.Params) {
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %s %s\n", cliui.HeaderStyle.Render("seekchat"), cliui.DimStyle.Render("DeepSeek conversation"))
	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(p.Model),
	)
	if p.System != "" {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.KeyStyle.Render("System:"),
			cliui.ValueStyle.Render(p.System),
		)
	}
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. exit, 退出, an empty line or Ctrl+D to quit."))
}

func (c *chatCommander) printReply(content string) {
	if c.markdown {
		rendered, err := cliui.RenderMarkdown(content)
		if err != nil {
			c.logger.Debug("markdown rendering failed", "error", err)
		}
		fmt.Fprintf(c.out, "%s\n%s\n", assistantPrompt, rendered)
		return
	}

	fmt.Fprintf(c.out, "%s%s\n\n", assistantPrompt, content)
}
