package anthropic_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/llm"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider/anthropic"
)

var _ = Describe("Anthropic Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = anthropic.New()
	})

	It("returns 'anthropic' as its name", func() {
		Expect(p.Name()).To(Equal("anthropic"))
	})

	It("authenticates with x-api-key and a pinned API version", func() {
		headers := p.Headers("key-123")
		Expect(headers).To(HaveKeyWithValue("x-api-key", "key-123"))
		Expect(headers).To(HaveKey("anthropic-version"))
	})

	Describe("BuildRequest", func() {
		It("moves system messages into the system field", func() {
			body, err := p.BuildRequest(&llm.ChatRequest{
				Model: "claude-haiku-4-5-20251001",
				Messages: []llm.Message{
					llm.NewTextMessage("system", "You are PilotLight."),
					llm.NewTextMessage("user", "Hi"),
					llm.NewTextMessage("assistant", "Hello"),
					llm.NewTextMessage("user", "How are you?"),
				},
			})
			Expect(err).NotTo(HaveOccurred())

			var parsed map[string]any
			Expect(json.Unmarshal(body, &parsed)).To(Succeed())
			Expect(parsed["system"]).To(Equal("You are PilotLight."))
			Expect(parsed["max_tokens"]).To(BeNumerically("==", 1024))

			messages := parsed["messages"].([]any)
			Expect(messages).To(HaveLen(3))
			Expect(messages[0].(map[string]any)["role"]).To(Equal("user"))
		})

		It("honours an explicit max token count", func() {
			maxTokens := 256
			body, err := p.BuildRequest(&llm.ChatRequest{
				Model:     "claude-haiku-4-5-20251001",
				Messages:  []llm.Message{llm.NewTextMessage("user", "Hi")},
				MaxTokens: &maxTokens,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"max_tokens":256`))
		})
	})

	Describe("ParseResponse", func() {
		It("joins text blocks and maps usage", func() {
			payload := []byte(`{
				"id": "msg_1",
				"type": "message",
				"role": "assistant",
				"model": "claude-haiku-4-5-20251001",
				"content": [{"type": "text", "text": "Hello, "}, {"type": "text", "text": "world"}],
				"stop_reason": "end_turn",
				"usage": {"input_tokens": 10, "output_tokens": 3}
			}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.GetText()).To(Equal("Hello, world"))
			Expect(resp.StopReason).To(Equal("end_turn"))
			Expect(resp.Usage.TotalTokens).To(Equal(13))
		})

		It("surfaces API errors", func() {
			_, err := p.ParseResponse([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "bad key"}}`))
			Expect(err).To(MatchError(ContainSubstring("bad key")))
		})
	})
})
