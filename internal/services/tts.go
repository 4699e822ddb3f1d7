package services

import (
	"context"

	"github.com/bobarin/voicegate/internal/models"
)

// ---------------------------------------------------------------------------
// TTSService: common interface for text-to-speech backends
// gTTS, eSpeak, XTTS, OpenAI, Gemini, ElevenLabs and Cartesia all implement
// it so the HTTP layer can use whichever is configured without knowing the
// underlying engine.
// ---------------------------------------------------------------------------

const (
	MIMETypeMPEG = "audio/mpeg"
	MIMETypeWAV  = "audio/wav"
)

// SynthesisRequest is one call's worth of input. ReferenceAudio is only read by
// backends whose BackendInfo.RequiresReference is true.
type SynthesisRequest struct {
	Text           string
	Language       string
	Style          models.VoiceStyle
	ReferenceAudio []byte
}

// TTSResponse is the common response type from any TTS backend.
type TTSResponse struct {
	AudioData []byte
	MIMEType  string // "audio/mpeg" or "audio/wav"
	Format    string // "mp3", "wav"
}

// BackendInfo describes what a backend accepts.
type BackendInfo struct {
	Name              string
	DefaultLanguage   string
	Languages         []string // nil = any well-formed BCP-47 tag
	Styles            []models.VoiceStyle
	RequiresReference bool
}

// SupportsStyle reports whether style is one of the advertised styles.
func (b BackendInfo) SupportsStyle(style models.VoiceStyle) bool {
	for _, s := range b.Styles {
		if s == style {
			return true
		}
	}
	return false
}

// TTSService is the interface that any TTS backend must implement.
type TTSService interface {
	Describe() BackendInfo

	// ValidateLanguage returns an *InputError for codes the engine cannot speak.
	ValidateLanguage(language string) error

	// GenerateSpeech converts text to audio. Text has already been validated and
	// humanized by the Synthesizer; backends must not retry.
	GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error)
}
