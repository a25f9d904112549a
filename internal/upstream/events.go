package upstream

import (
	"encoding/json"
	"fmt"
)

// Upstream event types the relay classifies specially. The vocabulary is
// open-ended; anything else passes through in a generic envelope.
const (
	EventSessionCreated              = "session.created"
	EventSessionUpdated              = "session.updated"
	EventError                       = "error"
	EventAudioDelta                  = "response.audio.delta"
	EventTranscriptDelta             = "response.audio_transcript.delta"
	EventInputTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventInputTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"
	EventResponseDone                = "response.done"
	EventSpeechStarted               = "input_audio_buffer.speech_started"
	EventSpeechStopped               = "input_audio_buffer.speech_stopped"
)

// Event is one decoded upstream event. Raw preserves the full envelope for
// passthrough forwarding; the named fields cover the dedicated client shapes.
type Event struct {
	Type       string
	Delta      string
	Transcript string
	Error      json.RawMessage
	Raw        json.RawMessage
}

func decodeEvent(data []byte) (Event, error) {
	var partial struct {
		Type       string          `json:"type"`
		Delta      string          `json:"delta"`
		Transcript string          `json:"transcript"`
		Error      json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return Event{}, fmt.Errorf("decode upstream event: %w", err)
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return Event{
		Type:       partial.Type,
		Delta:      partial.Delta,
		Transcript: partial.Transcript,
		Error:      partial.Error,
		Raw:        raw,
	}, nil
}

// Outbound command payloads. Shapes follow the OpenAI Realtime API.

type AudioAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

func NewAudioAppend(audioBase64 string) AudioAppend {
	return AudioAppend{Type: "input_audio_buffer.append", Audio: audioBase64}
}

type AudioCommit struct {
	Type string `json:"type"`
}

func NewAudioCommit() AudioCommit {
	return AudioCommit{Type: "input_audio_buffer.commit"}
}

type ResponseCreate struct {
	Type string `json:"type"`
}

func NewResponseCreate() ResponseCreate {
	return ResponseCreate{Type: "response.create"}
}

type ResponseCancel struct {
	Type string `json:"type"`
}

func NewResponseCancel() ResponseCancel {
	return ResponseCancel{Type: "response.cancel"}
}

type itemContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []itemContent `json:"content"`
}

type ItemCreate struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

// NewUserTextItem builds a conversation item carrying one literal user text message.
func NewUserTextItem(text string) ItemCreate {
	return ItemCreate{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:    "message",
			Role:    "user",
			Content: []itemContent{{Type: "input_text", Text: text}},
		},
	}
}
