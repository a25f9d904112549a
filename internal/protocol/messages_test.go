package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseClientMessageCommands(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want MessageType
	}{
		{"connect", `{"type":"connect_agent","agent_id":"technical_expert"}`, TypeConnectAgent},
		{"switch", `{"type":"switch_agent","agent_id":"creative_writer"}`, TypeSwitchAgent},
		{"audio", `{"type":"audio","audio":"cGNtMTY="}`, TypeAudio},
		{"commit", `{"type":"commit_audio"}`, TypeCommitAudio},
		{"cancel", `{"type":"cancel"}`, TypeCancel},
		{"text", `{"type":"text","text":"hello"}`, TypeText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseClientMessage([]byte(tc.raw))
			if err != nil {
				t.Fatalf("ParseClientMessage() error = %v", err)
			}
			got, ok := TypeOf(parsed)
			if !ok || got != tc.want {
				t.Fatalf("TypeOf() = %q,%v, want %q", got, ok, tc.want)
			}
		})
	}
}

func TestParseClientMessageFields(t *testing.T) {
	parsed, err := ParseClientMessage([]byte(`{"type":"connect_agent","agent_id":"technical_expert"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	msg, ok := parsed.(ConnectAgent)
	if !ok {
		t.Fatalf("parsed type = %T, want ConnectAgent", parsed)
	}
	if msg.AgentID != "technical_expert" {
		t.Fatalf("AgentID = %q, want technical_expert", msg.AgentID)
	}
}

func TestParseClientMessageUnknownType(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"telemetry","data":1}`)); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageInvalidJSON(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{`)); err == nil {
		t.Fatalf("invalid JSON should fail to parse")
	}
}

func TestErrorTextEncodesDetail(t *testing.T) {
	msg := ErrorText("boom")
	encoded, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	if string(encoded) != `{"type":"error","error":"boom"}` {
		t.Fatalf("encoded = %s", encoded)
	}
}
