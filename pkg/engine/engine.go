// Package engine runs the per-turn chat protocol: outbound transforms, the
// completion backend, inbound transforms, and the conversation log.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/backend"
	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/eventstream"
	"github.com/papercomputeco/pilotlight/pkg/llm"
	"github.com/papercomputeco/pilotlight/pkg/plugin"
)

// DefaultSystemPrompt seeds every new or cleared conversation.
const DefaultSystemPrompt = "You are PilotLight, a helpful AI assistant."

// State is the engine's position in the turn protocol.
type State int32

const (
	// StateIdle means no completion is outstanding.
	StateIdle State = iota

	// StateAwaitingCompletion spans the backend call in GetAssistantResponse.
	StateAwaitingCompletion
)

func (s State) String() string {
	if s == StateAwaitingCompletion {
		return "awaiting_completion"
	}
	return "idle"
}

// Config wires an Engine's collaborators.
type Config struct {
	// Completer produces assistant replies. Required.
	Completer backend.Completer

	// Pipeline transforms text in both directions. Nil means no transforms.
	Pipeline *plugin.Pipeline

	// Publisher receives an event for every appended user and assistant turn.
	Publisher eventstream.Publisher

	// SystemPrompt overrides DefaultSystemPrompt.
	SystemPrompt string

	// Conversation names the log in events and history drivers.
	Conversation string

	// Source describes this process in emitted events.
	Source eventstream.EventSource

	Logger *zap.Logger
}

// Engine owns one conversation. Calls are serialized: an operation started
// while another is running waits for it to finish.
type Engine struct {
	mu    sync.Mutex
	state atomic.Int32

	log          *chat.Log
	completer    backend.Completer
	pipeline     *plugin.Pipeline
	publisher    eventstream.Publisher
	systemPrompt string
	conversation string
	source       eventstream.EventSource
	logger       *zap.Logger
}

// New creates an engine whose log holds exactly one system turn.
func New(cfg Config) (*Engine, error) {
	if cfg.Completer == nil {
		return nil, errors.New("engine requires a completer")
	}

	e := &Engine{
		log:          chat.NewLog(),
		completer:    cfg.Completer,
		pipeline:     cfg.Pipeline,
		publisher:    cfg.Publisher,
		systemPrompt: cfg.SystemPrompt,
		conversation: cfg.Conversation,
		source:       cfg.Source,
		logger:       cfg.Logger,
	}
	if e.systemPrompt == "" {
		e.systemPrompt = DefaultSystemPrompt
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	e.seed()
	return e, nil
}

// Conversation returns the conversation name.
func (e *Engine) Conversation() string {
	return e.conversation
}

// State reports whether a completion is in flight.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// AddUserMessage transforms text outbound and appends it as a user turn.
func (e *Engine) AddUserMessage(ctx context.Context, text string, attachments []chat.Attachment) chat.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()

	transformed := e.pipeline.Apply(ctx, plugin.Outbound, text)
	turn := chat.NewTurn(chat.RoleUser, transformed, attachments...)
	e.log.Append(turn)

	e.logger.Debug("user turn appended",
		zap.String("turn_id", turn.ID),
		zap.Int("attachments", len(turn.Attachments)),
		zap.Bool("transformed", transformed != text),
	)
	e.publish(ctx, turn)
	return turn
}

// GetAssistantResponse sends the log to the backend, transforms the reply
// inbound, and appends it as an assistant turn. Backend failures arrive as
// error text and are handled like any other reply.
func (e *Engine) GetAssistantResponse(ctx context.Context) chat.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()

	reply := e.complete(ctx)

	if backend.IsError(reply) {
		e.logger.Debug("backend returned an error reply", zap.String("reply", reply))
	}

	turn := chat.NewTurn(chat.RoleAssistant, e.pipeline.Apply(ctx, plugin.Inbound, reply))
	e.log.Append(turn)
	e.publish(ctx, turn)
	return turn
}

// complete runs the backend call, reporting StateAwaitingCompletion until it
// returns or panics.
func (e *Engine) complete(ctx context.Context) string {
	e.state.Store(int32(StateAwaitingCompletion))
	defer e.state.Store(int32(StateIdle))

	return e.completer.Complete(ctx, messages(e.log.Turns()))
}

// ClearHistory drops every turn and re-seeds the system turn.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Clear()
	e.seed()
}

// History returns a copy of the conversation log.
func (e *Engine) History() []chat.Turn {
	return e.log.Turns()
}

// Len returns the number of turns in the log.
func (e *Engine) Len() int {
	return e.log.Len()
}

func (e *Engine) seed() {
	e.log.Append(chat.NewTurn(chat.RoleSystem, e.systemPrompt))
}

// restore replaces the log with turns, re-seeding when turns is empty.
func (e *Engine) restore(turns []chat.Turn) {
	e.log.Replace(turns)
	if e.log.Len() == 0 {
		e.seed()
	}
}

func (e *Engine) publish(ctx context.Context, turn chat.Turn) {
	if e.publisher == nil {
		return
	}

	ev := eventstream.NewTurnAppendedEvent(e.conversation, e.source, turn)
	if err := e.publisher.PublishTurn(ctx, ev); err != nil {
		e.logger.Debug("could not publish turn event",
			zap.String("turn_id", turn.ID),
			zap.Error(err),
		)
	}
}

// messages maps turns to backend messages. Attachments are not forwarded.
func messages(turns []chat.Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.NewTextMessage(t.Role.String(), t.Content))
	}
	return out
}
