package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Wire values of the "type" field.
const (
	TypeJoin      = "join"
	TypeMessage   = "message"
	TypeSystem    = "system"
	TypeUserCount = "userCount"
)

// TimeLayout is the wall-clock format carried in the "time" field.
const TimeLayout = "15:04:05"

// FormatTime renders t as 24-hour local time with seconds resolution.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// JoinNotice and LeaveNotice build the system text announced on membership
// changes. The wording is part of the wire contract with existing clients.
func JoinNotice(username string) string {
	return username + " 加入了聊天室"
}

func LeaveNotice(username string) string {
	return username + " 离开了聊天室"
}

// Message is an outbound message. Concrete types marshal themselves into the
// tagged JSON wire form.
type Message interface {
	Type() string
}

// ChatMessage is a chat line relayed from a joined participant.
type ChatMessage struct {
	Username string
	Content  string
	Time     string
}

// NewChatMessage builds a ChatMessage stamped with at.
func NewChatMessage(username, content string, at time.Time) ChatMessage {
	return ChatMessage{Username: username, Content: content, Time: FormatTime(at)}
}

func (ChatMessage) Type() string { return TypeMessage }

func (m ChatMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		Content  string `json:"content"`
		Time     string `json:"time"`
	}{TypeMessage, m.Username, m.Content, m.Time})
}

// SystemMessage is a notification generated by the hub itself.
type SystemMessage struct {
	Content string
	Time    string
}

// NewSystemMessage builds a SystemMessage stamped with at.
func NewSystemMessage(content string, at time.Time) SystemMessage {
	return SystemMessage{Content: content, Time: FormatTime(at)}
}

func (SystemMessage) Type() string { return TypeSystem }

func (m SystemMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Content string `json:"content"`
		Time    string `json:"time"`
	}{TypeSystem, m.Content, m.Time})
}

// UserCountMessage carries the current online count.
type UserCountMessage struct {
	Count int
}

func (UserCountMessage) Type() string { return TypeUserCount }

// MarshalJSON always emits "count", zero included.
func (m UserCountMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	}{TypeUserCount, m.Count})
}

var errNilMessage = errors.New("chat: nil message")

// Encode serializes m into its wire payload.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, errNilMessage
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("chat: encode %s message: %w", m.Type(), err)
	}
	return payload, nil
}
