// Package protocol defines the JSON messages exchanged between clients and
// the relay. Every message is one JSON object with a "type" discriminator.
package protocol

import "LiveBoard/internal/state"

// Type discriminates wire messages.
type Type string

const (
	TypeGetUserID Type = "getUserId"
	TypeUserID    Type = "userId"
	TypeDraw      Type = "draw"
	TypeUndo      Type = "undo"
	TypeRedo      Type = "redo"
	TypeCursor    Type = "cursor"
)

// Message is implemented by every wire message variant. The set is closed:
// only the types in this package satisfy it.
type Message interface {
	Type() Type
	message()
}

// GetUserID asks the relay to tell the client its identity.
type GetUserID struct{}

// UserID is the relay's answer to GetUserID.
type UserID struct {
	UserID string `json:"userId"`
}

// Draw appends one point to stroke ID, creating the stroke if needed.
type Draw struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	IsEraser bool    `json:"isEraser"`
}

// Undo removes stroke ID. The relay stamps UserID with the sender.
type Undo struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
}

// Redo (re)inserts a complete stroke.
type Redo struct {
	ID       string        `json:"id"`
	UserID   string        `json:"userId,omitempty"`
	Points   []state.Point `json:"points"`
	Color    string        `json:"color"`
	Width    float64       `json:"width"`
	IsEraser bool          `json:"isEraser"`
}

// Cursor is a presence update in world coordinates. ConnectionID and Color
// are filled in by the relay.
type Cursor struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ConnectionID string  `json:"connectionId,omitempty"`
	Color        string  `json:"color,omitempty"`
}

func (GetUserID) Type() Type { return TypeGetUserID }
func (UserID) Type() Type { return TypeUserID }
func (Draw) Type() Type { return TypeDraw }
func (Undo) Type() Type { return TypeUndo }
func (Redo) Type() Type { return TypeRedo }
func (Cursor) Type() Type { return TypeCursor }

func (GetUserID) message() {}
func (UserID) message() {}
func (Draw) message() {}
func (Undo) message() {}
func (Redo) message() {}
func (Cursor) message() {}

// Style returns the stroke style carried by a draw message.
func (d Draw) Style() state.Style {
	return state.Style{Color: d.Color, Width: d.Width, Eraser: d.IsEraser}
}

// Style returns the stroke style carried by a redo message.
func (r Redo) Style() state.Style {
	return state.Style{Color: r.Color, Width: r.Width, Eraser: r.IsEraser}
}

// RedoFromStroke builds the message that re-creates s on other clients.
func RedoFromStroke(s *state.Stroke) Redo {
	pts := make([]state.Point, len(s.Points))
	copy(pts, s.Points)
	return Redo{
		ID:       s.ID,
		UserID:   s.Owner,
		Points:   pts,
		Color:    s.Style.Color,
		Width:    s.Style.Width,
		IsEraser: s.Style.Eraser,
	}
}
