package deepseek_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/llm/deepseek"
	"github.com/papercomputeco/seekchat/pkg/logger"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		handler  http.HandlerFunc
		client   *deepseek.Client
		received map[string]any
		authHdr  string
	)

	BeforeEach(func() {
		ctx = context.Background()
		received = nil
		authHdr = ""
		handler = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/chat/completions"))
			authHdr = r.Header.Get("Authorization")

			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())

			handler(w, r)
		}))

		var err error
		client, err = deepseek.NewClient(deepseek.Config{
			APIKey:  "sk-test",
			BaseURL: server.URL + "/",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("fails fast without an API key", func() {
			c, err := deepseek.NewClient(deepseek.Config{BaseURL: "http://127.0.0.1:1"})
			Expect(err).To(MatchError(deepseek.ErrMissingAPIKey))
			Expect(c).To(BeNil())
		})

		It("treats a whitespace key as missing", func() {
			_, err := deepseek.NewClient(deepseek.Config{APIKey: "   "})
			Expect(err).To(MatchError(deepseek.ErrMissingAPIKey))
		})

		It("defaults the base URL", func() {
			c, err := deepseek.NewClient(deepseek.Config{APIKey: "sk"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.BaseURL()).To(Equal(deepseek.DefaultBaseURL))
		})

		It("reads the key from the environment", func() {
			GinkgoT().Setenv(deepseek.EnvLegacyBaseURL, "")
			GinkgoT().Setenv(deepseek.EnvAPIKey, "")
			_, err := deepseek.NewClientFromEnv()
			Expect(err).To(MatchError(deepseek.ErrMissingAPIKey))

			GinkgoT().Setenv(deepseek.EnvAPIKey, "sk-env")
			GinkgoT().Setenv(deepseek.EnvBaseURL, "http://example.test/v1")
			c, err := deepseek.NewClientFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(c.BaseURL()).To(Equal("http://example.test/v1"))
		})

		It("falls back to DEEPSEEK_DATABASE_URL for the endpoint", func() {
			GinkgoT().Setenv(deepseek.EnvAPIKey, "sk-env")
			GinkgoT().Setenv(deepseek.EnvBaseURL, "")
			GinkgoT().Setenv(deepseek.EnvLegacyBaseURL, "http://legacy.test/v1")

			c, err := deepseek.NewClientFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(c.BaseURL()).To(Equal("http://legacy.test/v1"))

			GinkgoT().Setenv(deepseek.EnvBaseURL, "http://primary.test/v1")
			c, err = deepseek.NewClientFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(c.BaseURL()).To(Equal("http://primary.test/v1"))
		})
	})

	Describe("Chat", func() {
		It("sends the full message list with generation parameters", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"id":"c1","model":"deepseek-chat","created":1700000000,
					"choices":[{"index":0,"message":{"role":"assistant","content":"Hi!"},"finish_reason":"stop"}],
					"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`)
			}

			req := (&llm.ChatRequest{
				Model: "deepseek-chat",
				Messages: []llm.Message{
					llm.UserMessage("hello"),
					llm.AssistantMessage("hi"),
					llm.UserMessage("how are you?"),
				},
			}).WithTemperature(0.7).WithMaxTokens(500)

			resp, err := client.Chat(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(llm.AssistantMessage("Hi!")))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage.TotalTokens).To(Equal(5))
			Expect(resp.CreatedAt.Unix()).To(Equal(int64(1700000000)))

			Expect(authHdr).To(Equal("Bearer sk-test"))
			Expect(received["model"]).To(Equal("deepseek-chat"))
			Expect(received["temperature"]).To(BeNumerically("==", 0.7))
			Expect(received["max_tokens"]).To(BeNumerically("==", 500))
			Expect(received["stream"]).To(BeFalse())
			Expect(received["messages"]).To(HaveLen(3))
		})

		It("returns an APIError for non-2xx responses", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":{"message":"Authentication Fails","type":"authentication_error"}}`)
			}

			_, err := client.Chat(ctx, &llm.ChatRequest{Messages: []llm.Message{llm.UserMessage("x")}})
			var apiErr *deepseek.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(apiErr.Type).To(Equal("authentication_error"))
			Expect(apiErr.IsAuthError()).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Authentication Fails"))
		})

		It("keeps plain-text error bodies", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, "upstream down")
			}

			_, err := client.Chat(ctx, &llm.ChatRequest{})
			Expect(err).To(MatchError(ContainSubstring("upstream down")))
		})

		It("rejects malformed bodies", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"choices": [`)
			}

			_, err := client.Chat(ctx, &llm.ChatRequest{})
			Expect(err).To(MatchError(deepseek.ErrMalformedResponse))
		})

		It("rejects responses without choices", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"id":"c1","choices":[]}`)
			}

			_, err := client.Chat(ctx, &llm.ChatRequest{})
			Expect(err).To(MatchError(deepseek.ErrNoChoices))
		})
	})

	Describe("ChatStream", func() {
		It("yields chunks lazily until [DONE]", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, "data: {\"model\":\"deepseek-chat\",\"choices\":[{\"delta\":{\"role\":\"assistant\",\"content\":\"\"}}]}\n\n")
				fmt.Fprint(w, ": keep-alive\n\n")
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"},\"finish_reason\":\"stop\"}]}\n\n")
				fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"total_tokens\":9}}\n\n")
				fmt.Fprint(w, "data: [DONE]\n\n")
			}

			stream, err := client.ChatStream(ctx, &llm.ChatRequest{Messages: []llm.Message{llm.UserMessage("hi")}})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			Expect(received["stream"]).To(BeTrue())

			var chunks []*llm.StreamChunk
			for {
				chunk, err := stream.Next()
				Expect(err).NotTo(HaveOccurred())
				if chunk == nil {
					break
				}
				chunks = append(chunks, chunk)
			}

			Expect(chunks).To(HaveLen(4))
			Expect(chunks[0].Role).To(Equal("assistant"))
			Expect(chunks[0].HasContent()).To(BeFalse())
			Expect(chunks[1].Delta).To(Equal("Hel"))
			Expect(chunks[2].Delta).To(Equal("lo"))
			Expect(chunks[2].StopReason).To(Equal("stop"))
			Expect(chunks[3].Usage.TotalTokens).To(Equal(9))

			chunk, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk).To(BeNil())
		})

		It("copies the raw stream to the wire log", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\ndata: [DONE]\n\n")
			}

			wire := &bytes.Buffer{}
			c, err := deepseek.NewClient(deepseek.Config{APIKey: "sk", BaseURL: server.URL, WireLog: wire})
			Expect(err).NotTo(HaveOccurred())

			stream, err := c.ChatStream(ctx, &llm.ChatRequest{})
			Expect(err).NotTo(HaveOccurred())
			for {
				chunk, err := stream.Next()
				Expect(err).NotTo(HaveOccurred())
				if chunk == nil {
					break
				}
			}
			Expect(stream.Close()).To(Succeed())
			Expect(wire.String()).To(ContainSubstring("data: [DONE]"))
		})

		It("logs chunks that carry no content field", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"\"}}]}\n\n")
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
				fmt.Fprint(w, "data: [DONE]\n\n")
			}

			logs := &bytes.Buffer{}
			c, err := deepseek.NewClient(deepseek.Config{
				APIKey:  "sk",
				BaseURL: server.URL,
				Logger:  logger.New(logger.WithDebug(true), logger.WithJSON(true), logger.WithWriter(logs)),
			})
			Expect(err).NotTo(HaveOccurred())

			stream, err := c.ChatStream(ctx, &llm.ChatRequest{})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			for {
				chunk, err := stream.Next()
				Expect(err).NotTo(HaveOccurred())
				if chunk == nil {
					break
				}
				Expect(chunk.Delta).To(BeEmpty())
			}
			Expect(strings.Count(logs.String(), "stream chunk without content")).To(Equal(1))
		})

		It("returns APIError before streaming on failure", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
			}

			stream, err := client.ChatStream(ctx, &llm.ChatRequest{})
			Expect(err).To(MatchError(ContainSubstring("rate limited")))
			Expect(stream).To(BeNil())
		})

		It("reports malformed chunks", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {not json}\n\n")
			}

			stream, err := client.ChatStream(ctx, &llm.ChatRequest{})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			_, err = stream.Next()
			Expect(err).To(MatchError(deepseek.ErrMalformedResponse))
			Expect(strings.Contains(err.Error(), "stream chunk")).To(BeTrue())
		})
	})
})
