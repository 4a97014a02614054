package eventstream

import "errors"

var (
	// ErrNilTurnEvent indicates a nil turn event payload was provided to a publisher.
	ErrNilTurnEvent = errors.New("nil turn event")

	// ErrUnsupportedSchema is returned by Decode for payloads from a newer schema.
	ErrUnsupportedSchema = errors.New("unsupported turn event schema")
)
