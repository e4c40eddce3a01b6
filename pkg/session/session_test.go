package session_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/session"
)

// recordingChatter replies "reply-N" and fails the calls listed in failOn
// (1-based).
type recordingChatter struct {
	requests []*llm.ChatRequest
	failOn   map[int]bool
}

func (c *recordingChatter) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	// Snapshot the messages; the caller may reuse the slice.
	cp := *req
	cp.Messages = append([]llm.Message(nil), req.Messages...)
	c.requests = append(c.requests, &cp)

	n := len(c.requests)
	if c.failOn[n] {
		return nil, fmt.Errorf("call %d: connection reset", n)
	}
	return &llm.ChatResponse{
		Model:   req.Model,
		Message: llm.AssistantMessage(fmt.Sprintf("reply-%d", n)),
		Usage:   &llm.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}, nil
}

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		chatter *recordingChatter
		sess    *session.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		chatter = &recordingChatter{failOn: map[int]bool{}}
		sess = session.New(chatter)
	})

	Describe("Send", func() {
		It("alternates user and assistant turns", func() {
			for i := range 3 {
				reply, err := sess.Send(ctx, fmt.Sprintf("q%d", i))
				Expect(err).NotTo(HaveOccurred())
				Expect(reply).To(Equal(fmt.Sprintf("reply-%d", i+1)))
			}

			turns := sess.Transcript()
			Expect(turns).To(HaveLen(6))
			for i, turn := range turns {
				if i%2 == 0 {
					Expect(turn.Role).To(Equal(llm.RoleUser))
				} else {
					Expect(turn.Role).To(Equal(llm.RoleAssistant))
				}
			}
		})

		It("sends the whole transcript with every request", func() {
			_, _ = sess.Send(ctx, "one")
			_, _ = sess.Send(ctx, "two")

			Expect(chatter.requests).To(HaveLen(2))
			Expect(chatter.requests[0].Messages).To(Equal([]llm.Message{
				llm.UserMessage("one"),
			}))
			Expect(chatter.requests[1].Messages).To(Equal([]llm.Message{
				llm.UserMessage("one"),
				llm.AssistantMessage("reply-1"),
				llm.UserMessage("two"),
			}))
		})

		It("uses the default generation parameters", func() {
			_, err := sess.Send(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())

			req := chatter.requests[0]
			Expect(req.Model).To(Equal("deepseek-chat"))
			Expect(req.Stream).To(BeFalse())
			Expect(req.Temperature).NotTo(BeNil())
			Expect(*req.Temperature).To(BeNumerically("~", 0.7))
			Expect(req.MaxTokens).NotTo(BeNil())
			Expect(*req.MaxTokens).To(Equal(500))
		})

		It("returns the error and no reply on failure", func() {
			chatter.failOn[1] = true

			reply, err := sess.Send(ctx, "hi")
			Expect(err).To(MatchError(ContainSubstring("connection reset")))
			Expect(reply).To(BeEmpty())
		})
	})

	Describe("Exchange", func() {
		It("rolls back the failed user turn", func() {
			_, _ = sess.Send(ctx, "first")
			before := sess.Transcript()

			chatter.failOn[2] = true
			res := sess.Exchange(ctx, "lost")

			Expect(res.OK()).To(BeFalse())
			Expect(res.Err).To(HaveOccurred())
			Expect(res.Reply).To(BeNil())
			Expect(res.RolledBack).NotTo(BeNil())
			Expect(*res.RolledBack).To(Equal(llm.UserMessage("lost")))
			Expect(sess.Transcript()).To(Equal(before))
		})

		It("never replays a rolled back turn", func() {
			chatter.failOn[1] = true
			_ = sess.Exchange(ctx, "lost")
			Expect(sess.Len()).To(BeZero())

			res := sess.Exchange(ctx, "kept")
			Expect(res.OK()).To(BeTrue())

			Expect(chatter.requests[1].Messages).To(Equal([]llm.Message{
				llm.UserMessage("kept"),
			}))
			Expect(sess.Transcript()).To(Equal([]llm.Message{
				llm.UserMessage("kept"),
				llm.AssistantMessage("reply-2"),
			}))
		})

		It("treats a nil response as a failure", func() {
			s := session.New(nilChatter{})

			res := s.Exchange(ctx, "hi")
			Expect(res.Err).To(HaveOccurred())
			Expect(s.Len()).To(BeZero())
		})

		It("reports usage on success", func() {
			res := sess.Exchange(ctx, "hi")
			Expect(res.Usage).NotTo(BeNil())
			Expect(res.Usage.TotalTokens).To(Equal(12))
		})
	})

	Describe("options", func() {
		It("prepends the system prompt without storing it", func() {
			p := session.DefaultParams()
			p.System = "be brief"
			p.Model = "deepseek-reasoner"
			p.Temperature = 0.2
			p.MaxTokens = 64
			sess = session.New(chatter, session.WithParams(p))

			_, err := sess.Send(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())

			req := chatter.requests[0]
			Expect(req.Model).To(Equal("deepseek-reasoner"))
			Expect(*req.Temperature).To(BeNumerically("~", 0.2))
			Expect(*req.MaxTokens).To(Equal(64))
			Expect(req.Messages[0]).To(Equal(llm.SystemMessage("be brief")))
			Expect(req.Messages[1]).To(Equal(llm.UserMessage("hi")))
			Expect(sess.Transcript()[0].Role).To(Equal(llm.RoleUser))
		})
	})

	Describe("a line-driven loop", func() {
		It("stops at the exit word without sending it", func() {
			scanner := bufio.NewScanner(strings.NewReader("hello\nexit\nafter\n"))
			for scanner.Scan() {
				line := scanner.Text()
				if session.IsExit(line) {
					break
				}
				_, _ = sess.Send(ctx, line)
			}

			Expect(chatter.requests).To(HaveLen(1))
			Expect(chatter.requests[0].Messages).To(Equal([]llm.Message{
				llm.UserMessage("hello"),
			}))
		})
	})
})

type nilChatter struct{}

func (nilChatter) Chat(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, nil
}

var _ = Describe("IsExit", func() {
	DescribeTable("sentinels",
		func(input string, want bool) {
			Expect(session.IsExit(input)).To(Equal(want))
		},
		Entry("exit", "exit", true),
		Entry("upper case", "EXIT", true),
		Entry("quit with spaces", "  Quit  ", true),
		Entry("slash exit", "/exit", true),
		Entry("chinese", "退出", true),
		Entry("ordinary text", "hello", false),
		Entry("exit inside a sentence", "please exit", false),
		Entry("empty", "", true),
		Entry("whitespace only", " \t ", true),
	)
})

var _ = Describe("Transcript", func() {
	It("refuses a second pending turn", func() {
		var t session.Transcript
		p, err := t.Begin("one")
		Expect(err).NotTo(HaveOccurred())

		_, err = t.Begin("two")
		Expect(errors.Is(err, session.ErrTurnPending)).To(BeTrue())

		p.Commit(llm.AssistantMessage("ok"))
		_, err = t.Begin("two")
		Expect(err).NotTo(HaveOccurred())
	})

	It("ignores a commit after rollback", func() {
		var t session.Transcript
		p, _ := t.Begin("one")
		Expect(p.Rollback()).To(Equal(llm.UserMessage("one")))

		p.Commit(llm.AssistantMessage("late"))
		Expect(t.Len()).To(BeZero())
	})

	It("returns a copy of its messages", func() {
		var t session.Transcript
		p, _ := t.Begin("one")
		p.Commit(llm.AssistantMessage("ok"))

		msgs := t.Messages()
		msgs[0].Content = "mutated"
		Expect(t.Messages()[0].Content).To(Equal("one"))
	})
})
