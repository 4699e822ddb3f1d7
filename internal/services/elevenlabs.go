package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bobarin/voicegate/internal/models"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Uses ElevenLabs REST API to convert text into speech audio.
// Model: eleven_flash_v2_5 (Flash v2.5, 32 languages)
// ---------------------------------------------------------------------------

const (
	elevenLabsDefaultModel = "eleven_flash_v2_5"
	elevenLabsDefaultVoice = "pNInz6obpgDQGcFmaJgB" // Adam
	elevenLabsWomanVoice   = "21m00Tcm4TlvDq8ikWAM" // Rachel
	elevenLabsOutputFormat = "mp3_44100_128"
	elevenLabsSlowSpeed    = 0.75
)

// ElevenLabsVoices holds one voice ID per style. Empty man/woman IDs fall back to stock voices.
type ElevenLabsVoices struct {
	Normal string
	Man    string
	Woman  string
}

// ElevenLabsService handles text-to-speech via ElevenLabs API.
type ElevenLabsService struct {
	apiKey  string
	baseURL string
	voices  ElevenLabsVoices
	modelID string
	client  *http.Client
}

// Ensure ElevenLabsService implements TTSService at compile time.
var _ TTSService = (*ElevenLabsService)(nil)

func NewElevenLabsService(apiKey, baseURL string, voices ElevenLabsVoices) *ElevenLabsService {
	if voices.Normal == "" {
		voices.Normal = elevenLabsDefaultVoice
	}
	if voices.Man == "" {
		voices.Man = elevenLabsDefaultVoice
	}
	if voices.Woman == "" {
		voices.Woman = elevenLabsWomanVoice
	}
	return &ElevenLabsService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		voices:  voices,
		modelID: elevenLabsDefaultModel,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id"`
	LanguageCode  string                   `json:"language_code,omitempty"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

func (s *ElevenLabsService) Describe() BackendInfo {
	return BackendInfo{
		Name:            "elevenlabs",
		DefaultLanguage: "en",
		Styles:          models.AllVoiceStyles,
	}
}

func (s *ElevenLabsService) ValidateLanguage(language string) error {
	return checkLanguageTag(language)
}

// GenerateSpeech converts text to speech using ElevenLabs.
func (s *ElevenLabsService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	voiceID := styleVoiceID(req.Style, s.voices.Normal, s.voices.Man, s.voices.Woman)

	speed := 1.0
	if req.Style == models.VoiceStyleSlow {
		speed = elevenLabsSlowSpeed
	}

	reqBody := elevenLabsRequest{
		Text:         req.Text,
		ModelID:      s.modelID,
		LanguageCode: baseLanguage(req.Language),
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       0.60,
			SimilarityBoost: 0.80,
			Speed:           speed,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ElevenLabs request: %w", err)
	}

	// POST /v1/text-to-speech/{voice_id}?output_format=mp3_44100_128
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", s.baseURL, voiceID, elevenLabsOutputFormat)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create ElevenLabs request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.apiKey)

	log.Printf("[ElevenLabs] Generating speech (voiceID=%s, model=%s, textLen=%d, speed=%.2f)",
		voiceID, s.modelID, len(req.Text), speed)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs returned status %d: %s", resp.StatusCode, string(body))
	}

	// The response body is the audio file
	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ElevenLabs audio response: %w", err)
	}

	log.Printf("[ElevenLabs] Speech generated (%d bytes)", len(audioData))

	return &TTSResponse{
		AudioData: audioData,
		MIMEType:  MIMETypeMPEG,
		Format:    "mp3",
	}, nil
}

// styleVoiceID picks the voice configured for style; normal and slow share one voice.
func styleVoiceID(style models.VoiceStyle, normal, man, woman string) string {
	switch style {
	case models.VoiceStyleMan:
		return man
	case models.VoiceStyleWoman:
		return woman
	}
	return normal
}

// baseLanguage strips region and script subtags ("pt-BR" -> "pt").
func baseLanguage(code string) string {
	base, _, _ := strings.Cut(normalizeLanguage(code), "-")
	return base
}
