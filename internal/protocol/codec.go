package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingType  = errors.New("message has no type")
	ErrUnknownType  = errors.New("unknown message type")
	ErrMissingField = errors.New("message is missing a required field")
)

type envelope struct {
	Type Type `json:"type"`
}

// Encode serializes m as a single JSON object carrying its type.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, errors.New("encode nil message")
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Type(), err)
	}
	head, err := json.Marshal(envelope{Type: m.Type()})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", m.Type(), err)
	}

	// Both values are JSON objects; join them into one.
	body = bytes.TrimSpace(body)
	if len(body) <= 2 {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

// Decode maps raw bytes to exactly one message variant.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "":
		return nil, ErrMissingType
	case TypeGetUserID:
		return GetUserID{}, nil
	case TypeUserID:
		var m UserID
		if err := decodeBody(data, &m); err != nil {
			return nil, err
		}
		if m.UserID == "" {
			return nil, fmt.Errorf("%s: userId: %w", env.Type, ErrMissingField)
		}
		return m, nil
	case TypeDraw:
		var m Draw
		if err := decodeBody(data, &m); err != nil {
			return nil, err
		}
		if m.ID == "" {
			return nil, fmt.Errorf("%s: id: %w", env.Type, ErrMissingField)
		}
		return m, nil
	case TypeUndo:
		var m Undo
		if err := decodeBody(data, &m); err != nil {
			return nil, err
		}
		if m.ID == "" {
			return nil, fmt.Errorf("%s: id: %w", env.Type, ErrMissingField)
		}
		return m, nil
	case TypeRedo:
		var m Redo
		if err := decodeBody(data, &m); err != nil {
			return nil, err
		}
		if m.ID == "" {
			return nil, fmt.Errorf("%s: id: %w", env.Type, ErrMissingField)
		}
		return m, nil
	case TypeCursor:
		var m Cursor
		if err := decodeBody(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeBody(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal body: %w", err)
	}
	return nil
}
