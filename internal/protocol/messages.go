package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies client-facing websocket payload variants.
type MessageType string

const (
	// Inbound commands.
	TypeConnectAgent MessageType = "connect_agent"
	TypeSwitchAgent  MessageType = "switch_agent"
	TypeAudio        MessageType = "audio"
	TypeCommitAudio  MessageType = "commit_audio"
	TypeCancel       MessageType = "cancel"
	TypeText         MessageType = "text"

	// Outbound messages.
	TypeConnected       MessageType = "connected"
	TypeAgentSwitched   MessageType = "agent_switched"
	TypeError           MessageType = "error"
	TypeAudioDelta      MessageType = "audio_delta"
	TypeTranscriptDelta MessageType = "transcript_delta"
	TypeUserTranscript  MessageType = "user_transcript"
	TypeOpenAIEvent     MessageType = "openai_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type ConnectAgent struct {
	Type    MessageType `json:"type"`
	AgentID string      `json:"agent_id"`
}

type SwitchAgent struct {
	Type    MessageType `json:"type"`
	AgentID string      `json:"agent_id"`
}

// Audio carries one base64 PCM16 chunk bound for the upstream input buffer.
type Audio struct {
	Type  MessageType `json:"type"`
	Audio string      `json:"audio"`
}

type CommitAudio struct {
	Type MessageType `json:"type"`
}

type Cancel struct {
	Type MessageType `json:"type"`
}

type Text struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type Connected struct {
	Type      MessageType `json:"type"`
	AgentID   string      `json:"agent_id"`
	AgentName string      `json:"agent_name"`
}

type AgentSwitched struct {
	Type      MessageType `json:"type"`
	AgentID   string      `json:"agent_id"`
	AgentName string      `json:"agent_name"`
}

// ErrorMessage embeds either an upstream error payload or a relay-side
// detail string, pre-encoded so both shapes pass through unchanged.
type ErrorMessage struct {
	Type  MessageType     `json:"type"`
	Error json.RawMessage `json:"error"`
}

// ErrorText builds an ErrorMessage from a plain detail string.
func ErrorText(detail string) ErrorMessage {
	encoded, _ := json.Marshal(detail)
	return ErrorMessage{Type: TypeError, Error: encoded}
}

type AudioDelta struct {
	Type  MessageType `json:"type"`
	Delta string      `json:"delta"`
}

type TranscriptDelta struct {
	Type  MessageType `json:"type"`
	Delta string      `json:"delta"`
}

type UserTranscript struct {
	Type       MessageType `json:"type"`
	Transcript string      `json:"transcript"`
}

// OpenAIEvent is the generic passthrough envelope for upstream events that
// have no dedicated client-facing shape.
type OpenAIEvent struct {
	Type  MessageType     `json:"type"`
	Event json.RawMessage `json:"event"`
}

// ParseClientMessage decodes one inbound client command. Unrecognized types
// return ErrUnsupportedType so the caller can ignore them without replying.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeConnectAgent:
		var msg ConnectAgent
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeSwitchAgent:
		var msg SwitchAgent
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeAudio:
		var msg Audio
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeCommitAudio:
		return CommitAudio{Type: TypeCommitAudio}, nil
	case TypeCancel:
		return Cancel{Type: TypeCancel}, nil
	case TypeText:
		var msg Text
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// TypeOf reports the wire type of a known outbound or parsed inbound message.
func TypeOf(v any) (MessageType, bool) {
	switch m := v.(type) {
	case ConnectAgent:
		return m.Type, true
	case SwitchAgent:
		return m.Type, true
	case Audio:
		return m.Type, true
	case CommitAudio:
		return m.Type, true
	case Cancel:
		return m.Type, true
	case Text:
		return m.Type, true
	case Connected:
		return m.Type, true
	case AgentSwitched:
		return m.Type, true
	case ErrorMessage:
		return m.Type, true
	case AudioDelta:
		return m.Type, true
	case TranscriptDelta:
		return m.Type, true
	case UserTranscript:
		return m.Type, true
	case OpenAIEvent:
		return m.Type, true
	default:
		return "", false
	}
}
