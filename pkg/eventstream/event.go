package eventstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/pilotlight/pkg/chat"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnAppended is emitted after a turn is appended to a conversation.
	EventTypeTurnAppended = "pilotlight.turn.appended"
)

// TurnAppendedEvent is a transport-neutral event payload for an appended turn.
type TurnAppendedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Conversation  string      `json:"conversation"`
	Turn          chat.Turn   `json:"turn"`
}

// EventSource identifies where the turn originated.
type EventSource struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Host     string `json:"host,omitempty"`
}

// NewTurnAppendedEvent stamps a new event for turn.
func NewTurnAppendedEvent(conversation string, source EventSource, turn chat.Turn) *TurnAppendedEvent {
	return &TurnAppendedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnAppended,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Conversation:  conversation,
		Turn:          turn,
	}
}

// Encode validates event and returns its wire payload.
func Encode(event *TurnAppendedEvent) ([]byte, error) {
	if event == nil {
		return nil, ErrNilTurnEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal turn event: %w", err)
	}
	return payload, nil
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) (*TurnAppendedEvent, error) {
	var event TurnAppendedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal turn event: %w", err)
	}

	if event.SchemaVersion > SchemaVersionV1 {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedSchema, event.SchemaVersion)
	}
	if event.EventType != EventTypeTurnAppended {
		return nil, fmt.Errorf("unexpected event type %q", event.EventType)
	}
	return &event, nil
}
