package storage

// ErrNotFound is returned when a conversation doesn't exist in the store.
type ErrNotFound struct {
	Conversation string
}

func (e ErrNotFound) Error() string {
	if e.Conversation == "" {
		return "conversation not found"
	}

	return "conversation not found: " + e.Conversation
}
