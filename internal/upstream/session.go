package upstream

// languagePinPrefix keeps the model anchored to English regardless of the
// persona instructions that follow it.
const languagePinPrefix = "Always respond in English. The user is speaking English. " +
	"Never switch to another language unless the user explicitly asks.\n\n"

// SessionOptions are the process-wide fixed parts of the upstream handshake.
type SessionOptions struct {
	TranscriptionModel    string
	TranscriptionLanguage string
	Temperature           float64
	MaxResponseTokens     int
}

type transcriptionConfig struct {
	Model    string `json:"model"`
	Language string `json:"language"`
}

type sessionPayload struct {
	Modalities              []string            `json:"modalities"`
	Instructions            string              `json:"instructions"`
	Voice                   string              `json:"voice"`
	InputAudioFormat        string              `json:"input_audio_format"`
	OutputAudioFormat       string              `json:"output_audio_format"`
	InputAudioTranscription transcriptionConfig `json:"input_audio_transcription"`
	// Always null: the client drives turn-taking explicitly via commit/cancel.
	TurnDetection           *struct{} `json:"turn_detection"`
	Temperature             float64   `json:"temperature"`
	MaxResponseOutputTokens int       `json:"max_response_output_tokens"`
}

// SessionUpdate is the single configuration event sent after each dial.
type SessionUpdate struct {
	Type    string         `json:"type"`
	Session sessionPayload `json:"session"`
}

func newSessionUpdate(opts SessionOptions, instructions, voice string) SessionUpdate {
	return SessionUpdate{
		Type: "session.update",
		Session: sessionPayload{
			Modalities:        []string{"text", "audio"},
			Instructions:      languagePinPrefix + instructions,
			Voice:             voice,
			InputAudioFormat:  "pcm16",
			OutputAudioFormat: "pcm16",
			InputAudioTranscription: transcriptionConfig{
				Model:    opts.TranscriptionModel,
				Language: opts.TranscriptionLanguage,
			},
			Temperature:             opts.Temperature,
			MaxResponseOutputTokens: opts.MaxResponseTokens,
		},
	}
}
