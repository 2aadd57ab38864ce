package openai

import "fmt"

// SessionRequest is the control-plane body for creating an upstream realtime
// session. The instructions field carries the full assembled prompt,
// including any conversation history.
type SessionRequest struct {
	Model                   string                   `json:"model"`
	Modalities              []string                 `json:"modalities"`
	Instructions            string                   `json:"instructions"`
	Voice                   string                   `json:"voice"`
	InputAudioFormat        string                   `json:"input_audio_format"`
	OutputAudioFormat       string                   `json:"output_audio_format"`
	InputAudioTranscription *AudioTranscription      `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	Tools                   []Tool                   `json:"tools"`
	ToolChoice              string                   `json:"tool_choice"`
	Temperature             float64                  `json:"temperature"`
	MaxResponseOutputTokens int                      `json:"max_response_output_tokens"`
}

// AudioTranscription selects the model used to transcribe caller audio.
type AudioTranscription struct {
	Model string `json:"model"`
}

// TurnDetection holds server-side voice activity detection parameters.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
	CreateResponse    bool    `json:"create_response"`
}

// Tool declares a function the upstream model may call.
type Tool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  *ToolParameters `json:"parameters,omitempty"`
}

// ToolParameters is a JSON-schema object describing tool arguments.
type ToolParameters struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

// SessionResponse is the control-plane reply: the upstream session ID plus a
// short-lived credential scoped to it.
type SessionResponse struct {
	ID           string        `json:"id"`
	ClientSecret *ClientSecret `json:"client_secret"`
}

// ClientSecret is the ephemeral credential used for the signaling exchange.
type ClientSecret struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// APIError carries the upstream HTTP status and body for a failed call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error: status %d: %s", e.Status, e.Body)
}
