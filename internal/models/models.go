package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Enums
type VoiceStyle string

const (
	VoiceStyleNormal VoiceStyle = "normal"
	VoiceStyleSlow   VoiceStyle = "slow"
	VoiceStyleMan    VoiceStyle = "man"
	VoiceStyleWoman  VoiceStyle = "woman"
)

// AllVoiceStyles lists every style token a client may send, in display order.
var AllVoiceStyles = []VoiceStyle{
	VoiceStyleNormal,
	VoiceStyleSlow,
	VoiceStyleMan,
	VoiceStyleWoman,
}

// ParseVoiceStyle maps a raw form value to a VoiceStyle. Empty means normal.
func ParseVoiceStyle(raw string) (VoiceStyle, error) {
	s := VoiceStyle(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return VoiceStyleNormal, nil
	}
	for _, known := range AllVoiceStyles {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown voice style %q", raw)
}

type ResponseEncoding string

const (
	ResponseEncodingBinary ResponseEncoding = "binary"
	ResponseEncodingBase64 ResponseEncoding = "base64"
)

// ParseResponseEncoding accepts "binary" / "base64" (plus the "json" alias for base64).
func ParseResponseEncoding(raw string) (ResponseEncoding, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "binary", "stream", "audio":
		return ResponseEncodingBinary, true
	case "base64", "json":
		return ResponseEncodingBase64, true
	default:
		return "", false
	}
}

// DTOs for API responses

// GenerateAudioResponse is the JSON envelope returned when base64 output is requested.
type GenerateAudioResponse struct {
	AudioBase64 string `json:"audio_base64"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// BackendResponse describes the configured backend for GET /backend.
type BackendResponse struct {
	Name              string       `json:"name"`
	DefaultLanguage   string       `json:"default_language"`
	Languages         []string     `json:"languages,omitempty"` // empty = any well-formed tag
	Voices            []VoiceStyle `json:"voices"`
	RequiresReference bool         `json:"requires_reference"`
	MaxLanguageLength int          `json:"max_language_length"`
}

type HealthResponse struct {
	Status  string    `json:"status"`
	Backend string    `json:"backend"`
	Time    time.Time `json:"time"`
}

// SynthesisLog is the structured context attached to every synthesis log line.
type SynthesisLog struct {
	ID       uuid.UUID
	Backend  string
	Language string
	Voice    VoiceStyle
	TextLen  int
}

func (l SynthesisLog) String() string {
	return fmt.Sprintf("id=%s backend=%s language=%q voice=%s textLen=%d",
		l.ID, l.Backend, l.Language, l.Voice, l.TextLen)
}
