package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/backend"
	"github.com/papercomputeco/pilotlight/pkg/llm"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider"
)

func conversation() []llm.Message {
	return []llm.Message{
		llm.NewTextMessage("system", "You are PilotLight, a helpful AI assistant."),
		llm.NewTextMessage("user", "[A] hi"),
	}
}

// newCompleter builds a completer for providerName pointed at server.
func newCompleter(providerName string, server *httptest.Server, apiKey string) *backend.HTTPCompleter {
	p, err := provider.New(providerName)
	Expect(err).NotTo(HaveOccurred())
	return backend.NewHTTPCompleter(p, backend.Config{
		BaseURL: server.URL,
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
	})
}

var _ = Describe("HTTPCompleter", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		lastReq  *http.Request
		lastBody map[string]any
	)

	BeforeEach(func() {
		lastReq = nil
		lastBody = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &lastBody)
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	Context("openai", func() {
		It("posts the conversation and returns the reply text", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":"x","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
			}

			reply := newCompleter(provider.OpenAI, server, "sk-test").Complete(context.Background(), conversation())
			Expect(reply).To(Equal("ok"))
			Expect(lastReq.URL.Path).To(Equal("/v1/chat/completions"))
			Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
			Expect(lastReq.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(lastBody["model"]).To(Equal("gpt-4o-mini"))
			Expect(lastBody["messages"]).To(HaveLen(2))
		})

		It("reports a missing API key without sending anything", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {}

			reply := newCompleter(provider.OpenAI, server, "").Complete(context.Background(), conversation())
			Expect(reply).To(HavePrefix(backend.ErrorPrefix))
			Expect(reply).To(ContainSubstring("PILOTLIGHT_OPENAI_API_KEY"))
			Expect(lastReq).To(BeNil())
		})

		It("reports non-200 statuses in-band", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
			}

			reply := newCompleter(provider.OpenAI, server, "sk-bad").Complete(context.Background(), conversation())
			Expect(reply).To(HavePrefix("Error: openai API error (status 401)"))
			Expect(reply).To(ContainSubstring("bad key"))
		})

		It("reports undecodable bodies in-band", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			}

			reply := newCompleter(provider.OpenAI, server, "sk-test").Complete(context.Background(), conversation())
			Expect(reply).To(HavePrefix("Error: could not parse response"))
		})
	})

	Context("anthropic", func() {
		It("sends the system prompt separately", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":1}}`))
			}

			reply := newCompleter(provider.Anthropic, server, "ak-test").Complete(context.Background(), conversation())
			Expect(reply).To(Equal("ok"))
			Expect(lastReq.URL.Path).To(Equal("/v1/messages"))
			Expect(lastReq.Header.Get("x-api-key")).To(Equal("ak-test"))
			Expect(lastBody["system"]).To(Equal("You are PilotLight, a helpful AI assistant."))
			Expect(lastBody["messages"]).To(HaveLen(1))
		})
	})

	Context("ollama", func() {
		It("works without an API key", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"model":"llama3.2","created_at":"2026-01-02T03:04:05Z","message":{"role":"assistant","content":"ok"},"done":true}`))
			}

			reply := newCompleter(provider.Ollama, server, "").Complete(context.Background(), conversation())
			Expect(reply).To(Equal("ok"))
			Expect(lastReq.URL.Path).To(Equal("/api/chat"))
			Expect(lastBody["stream"]).To(BeFalse())
		})
	})

	It("reports a cancelled request in-band", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reply := newCompleter(provider.Ollama, server, "").Complete(ctx, conversation())
		Expect(reply).To(HavePrefix(backend.ErrorPrefix))
	})

	It("reports unreachable servers in-band", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {}
		p, err := provider.New(provider.Ollama)
		Expect(err).NotTo(HaveOccurred())

		c := backend.NewHTTPCompleter(p, backend.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
		Expect(c.Complete(context.Background(), conversation())).To(HavePrefix(backend.ErrorPrefix))
	})
})
