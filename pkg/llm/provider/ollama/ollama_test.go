package ollama_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/llm"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider/ollama"
)

var _ = Describe("Ollama Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = ollama.New()
	})

	It("does not require an API key", func() {
		Expect(p.RequiresAPIKey()).To(BeFalse())
		Expect(p.Headers("ignored")).NotTo(HaveKey("Authorization"))
	})

	It("targets the chat endpoint", func() {
		Expect(p.Endpoint("http://localhost:11434/")).To(Equal("http://localhost:11434/api/chat"))
	})

	Describe("BuildRequest", func() {
		It("disables streaming and keeps every role", func() {
			body, err := p.BuildRequest(&llm.ChatRequest{
				Model: "llama3.2",
				Messages: []llm.Message{
					llm.NewTextMessage("system", "You are PilotLight."),
					llm.NewTextMessage("user", "Hi"),
				},
			})
			Expect(err).NotTo(HaveOccurred())

			var parsed map[string]any
			Expect(json.Unmarshal(body, &parsed)).To(Succeed())
			Expect(parsed["stream"]).To(BeFalse())
			Expect(parsed).NotTo(HaveKey("options"))
			Expect(parsed["messages"]).To(HaveLen(2))
		})

		It("maps max tokens to num_predict", func() {
			maxTokens := 64
			body, err := p.BuildRequest(&llm.ChatRequest{
				Model:     "llama3.2",
				Messages:  []llm.Message{llm.NewTextMessage("user", "Hi")},
				MaxTokens: &maxTokens,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"num_predict":64`))
		})
	})

	Describe("ParseResponse", func() {
		It("parses a completed chat response", func() {
			payload := []byte(`{
				"model": "llama3.2",
				"created_at": "2025-01-01T00:00:00.000Z",
				"message": {"role": "assistant", "content": "Hello there"},
				"done": true,
				"done_reason": "stop",
				"prompt_eval_count": 12,
				"eval_count": 4
			}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.Role).To(Equal("assistant"))
			Expect(resp.Message.GetText()).To(Equal("Hello there"))
			Expect(resp.Usage.TotalTokens).To(Equal(16))
			Expect(resp.CreatedAt.Year()).To(Equal(2025))
		})

		It("surfaces server errors", func() {
			_, err := p.ParseResponse([]byte(`{"error": "model 'nope' not found"}`))
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})
	})
})
