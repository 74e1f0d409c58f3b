package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotMessageList is returned by DecodeMessages for documents that are not
// a JSON array of message objects.
var ErrNotMessageList = errors.New("document is not a JSON array of messages")

// DecodeMessages parses a stored message list. The document must be an array
// and every element must be an object; null elements are rejected.
func DecodeMessages(data []byte) ([]Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotMessageList
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("element %d: %w", i, ErrNotMessageList)
		}

		var msg Message
		if err := json.Unmarshal(item, &msg); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
