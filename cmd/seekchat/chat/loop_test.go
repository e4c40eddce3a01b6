package chatcmder

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/logger"
	"github.com/papercomputeco/seekchat/pkg/session"
)

// scriptedChatter answers with replies in order; a nil entry fails the call.
type scriptedChatter struct {
	replies  []*string
	requests []*llm.ChatRequest
}

func (s *scriptedChatter) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.requests = append(s.requests, req)
	reply := s.replies[0]
	s.replies = s.replies[1:]
	if reply == nil {
		return nil, errors.New("upstream unavailable")
	}
	return &llm.ChatResponse{Message: llm.AssistantMessage(*reply)}, nil
}

func ptr(s string) *string { return &s }

var _ = Describe("chat loop", func() {
	var (
		out     *bytes.Buffer
		errOut  *bytes.Buffer
		chatter *scriptedChatter
		sess    *session.Session
	)

	run := func(input string) error {
		c := &chatCommander{
			in:     strings.NewReader(input),
			out:    out,
			errOut: errOut,
			logger: logger.Nop(),
		}
		return c.run(context.Background(), sess)
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
		chatter = &scriptedChatter{}
		sess = session.New(chatter)
	})

	It("stops at an exit word without sending it", func() {
		chatter.replies = []*string{ptr("你好！")}

		Expect(run("hello\nexit\nnever sent\n")).To(Succeed())
		Expect(chatter.requests).To(HaveLen(1))
		Expect(out.String()).To(ContainSubstring("你好！"))
		Expect(sess.Len()).To(Equal(2))
	})

	It("ends cleanly on EOF", func() {
		chatter.replies = []*string{ptr("one")}

		Expect(run("hi")).To(Succeed())
		Expect(chatter.requests).To(HaveLen(1))
	})

	It("stops at an empty line", func() {
		chatter.replies = []*string{ptr("hi there")}

		Expect(run("hello\n\nworld\n")).To(Succeed())
		Expect(chatter.requests).To(HaveLen(1))
		Expect(sess.Len()).To(Equal(2))
	})

	It("treats a whitespace-only line as empty", func() {
		Expect(run("   \nnever sent\n")).To(Succeed())
		Expect(chatter.requests).To(BeEmpty())
	})

	It("reports failures and keeps going without the failed turn", func() {
		chatter.replies = []*string{nil, ptr("second answer")}

		Expect(run("first\nsecond\n")).To(Succeed())
		Expect(errOut.String()).To(ContainSubstring("upstream unavailable"))
		Expect(chatter.requests).To(HaveLen(2))

		// The retried request carries only the second question.
		msgs := chatter.requests[1].Messages
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Content).To(Equal("second"))
		Expect(sess.Len()).To(Equal(2))
	})

	It("starts over on /reset", func() {
		chatter.replies = []*string{ptr("a"), ptr("b")}

		Expect(run("one\n/reset\ntwo\n")).To(Succeed())
		Expect(chatter.requests[1].Messages).To(HaveLen(1))
		Expect(out.String()).To(ContainSubstring("New conversation"))
	})
})
