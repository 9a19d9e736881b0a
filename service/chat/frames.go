package chat

import (
	"encoding/json"

	chatmodel "VProject/module/chat/model"
	"VProject/tools/errs"
)

// Inbound frame types.
const (
	TypeChatMessage     = "chat_message"
	TypeTypingIndicator = "typing_indicator"
)

// Outbound frame types.
const (
	TypeConnectionEstablished = "connection_established"
	TypeMessageSent           = "message_sent"
	TypeMessageReceived       = "message_received"
	TypeError                 = "error"
)

// ParseInbound decodes a raw text frame into its generic object form. The
// type field decides the payload shape, so decoding happens in two steps.
func ParseInbound(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.ErrMalformedFrame.WithDetail(err.Error())
	}
	return m, nil
}

// FrameType extracts the declared type; empty when absent or not a string.
func FrameType(m map[string]any) string {
	t, _ := m["type"].(string)
	return t
}

// chatPayload is the chat_message body. ReceiverID stays untyped so the
// handler can tell "absent" from "not int-like".
type chatPayload struct {
	ReceiverID any    `json:"receiver_id"`
	Content    string `json:"content"`
}

// typingPayload is the typing_indicator body.
type typingPayload struct {
	ReceiverID any  `json:"receiver_id"`
	IsTyping   bool `json:"is_typing"`
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Only reachable with an unmarshalable builder argument.
		panic(err)
	}
	return b
}

func BuildConnectionEstablished() []byte {
	return mustJSON(map[string]any{
		"type":    TypeConnectionEstablished,
		"message": "Connected to chat system",
	})
}

func BuildMessageSent(m *chatmodel.Message) []byte {
	return mustJSON(map[string]any{
		"type":    TypeMessageSent,
		"message": m,
	})
}

func BuildMessageReceived(m *chatmodel.Message) []byte {
	return mustJSON(map[string]any{
		"type":    TypeMessageReceived,
		"message": m,
	})
}

func BuildTypingIndicator(senderID int64, senderUsername string, isTyping bool) []byte {
	return mustJSON(map[string]any{
		"type":            TypeTypingIndicator,
		"sender_id":       senderID,
		"sender_username": senderUsername,
		"is_typing":       isTyping,
	})
}

func BuildError(message string) []byte {
	return mustJSON(map[string]any{
		"type":  TypeError,
		"error": message,
	})
}
