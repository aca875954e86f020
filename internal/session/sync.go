package session

import (
	"fmt"

	"LiveBoard/internal/protocol"
	"LiveBoard/internal/state"
)

// Connected is called each time the channel to the relay opens. The relay
// answers with the identity already bound when the transport resumed it.
func (s *Session) Connected() {
	s.send(protocol.GetUserID{})
}

// HandleMessage decodes one inbound frame and applies it.
func (s *Session) HandleMessage(raw []byte) error {
	msg, err := protocol.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode inbound message: %w", err)
	}
	s.Apply(msg)
	return nil
}

// Apply dispatches a decoded message to the board or presence map. Remote
// updates are keyed by stroke id only; there is no ordering logic.
func (s *Session) Apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.UserID:
		switch s.userID {
		case m.UserID:
		case "":
			s.history.Adopt("", m.UserID)
			s.log.Info("identity bound", "user", m.UserID)
		default:
			s.log.Warn("identity changed, earlier strokes can no longer be undone", "old", s.userID, "new", m.UserID)
		}
		s.userID = m.UserID
		s.changed()

	case protocol.Draw:
		s.board.ApplyRemotePoint(m.ID, m.UserID, state.Point{X: m.X, Y: m.Y}, m.Style())
		s.engine.RequestRedraw()

	case protocol.Undo:
		if st, ok := s.board.Get(m.ID); ok && m.UserID != "" && st.Owner != m.UserID {
			s.log.Warn("undo from non-owner ignored", "stroke", m.ID, "owner", st.Owner, "sender", m.UserID)
			return
		}
		s.board.RemoveStroke(m.ID)
		s.changed()

	case protocol.Redo:
		s.board.ReplaceStroke(m.ID, m.UserID, m.Points, m.Style())
		s.changed()

	case protocol.Cursor:
		s.presence.Upsert(m.ConnectionID, state.Point{X: m.X, Y: m.Y}, m.Color)
		s.engine.RequestRedraw()

	case protocol.GetUserID:
		// Addressed to the relay; nothing to do on a client.

	default:
		s.log.Debug("unhandled message", "type", msg.Type())
	}
}
