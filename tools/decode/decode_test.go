package decode

import (
	"encoding/json"
	"testing"
)

type samplePayload struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
	IsTyping   bool   `json:"is_typing"`
}

func TestMapWeakTyping(t *testing.T) {
	in := map[string]any{
		"receiver_id": "17", // numeric string into int64
		"content":     "hello",
		"is_typing":   true,
	}
	out, err := Map[samplePayload](in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ReceiverID != 17 || out.Content != "hello" || !out.IsTyping {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestMapFloatToInt(t *testing.T) {
	// JSON numbers arrive as float64.
	in := map[string]any{"receiver_id": float64(9), "content": "x"}
	out, err := Map[samplePayload](in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ReceiverID != 9 {
		t.Fatalf("receiver_id = %d", out.ReceiverID)
	}
}

func TestMapIgnoresUnknownKeys(t *testing.T) {
	in := map[string]any{"content": "x", "type": "chat_message", "extra": 1}
	out, err := Map[samplePayload](in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Content != "x" {
		t.Fatalf("content = %q", out.Content)
	}
}

func TestInt64(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{float64(3), 3, true},
		{int64(4), 4, true},
		{int32(5), 5, true},
		{6, 6, true},
		{json.Number("7"), 7, true},
		{"8", 8, true},
		{"abc", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{[]any{1}, 0, false},
	}
	for _, tc := range cases {
		got, err := Int64(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("Int64(%v) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("Int64(%v) succeeded with %d, expected error", tc.in, got)
		}
	}
}
