package chat

import "encoding/json"

// Event is a decoded inbound frame.
type Event interface {
	eventType() string
}

// JoinEvent asks to set the sender's display name.
type JoinEvent struct {
	Username string
}

// ChatEvent carries a chat line from the sender.
type ChatEvent struct {
	Content string
}

// UnknownEvent is a well-formed frame whose type the hub does not handle.
type UnknownEvent struct {
	Type string
}

func (JoinEvent) eventType() string { return TypeJoin }
func (ChatEvent) eventType() string { return TypeMessage }
func (e UnknownEvent) eventType() string { return e.Type }

type inboundFrame struct {
	Type     *string `json:"type"`
	Username *string `json:"username"`
	Content  *string `json:"content"`
}

// DecodeEvent parses one inbound text frame. Invalid JSON and frames missing
// a field their type requires yield a *DecodeError; an unrecognized type is
// not an error and decodes to UnknownEvent.
func DecodeEvent(raw []byte) (Event, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	if frame.Type == nil {
		return nil, &DecodeError{Reason: `missing "type" field`}
	}

	switch *frame.Type {
	case TypeJoin:
		if frame.Username == nil {
			return nil, &DecodeError{Reason: `join without "username" field`}
		}
		return JoinEvent{Username: *frame.Username}, nil
	case TypeMessage:
		if frame.Content == nil {
			return nil, &DecodeError{Reason: `message without "content" field`}
		}
		return ChatEvent{Content: *frame.Content}, nil
	default:
		return UnknownEvent{Type: *frame.Type}, nil
	}
}
