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

const (
	// Default Cartesia API version
	CartesiaAPIVersion = "2024-06-10"

	cartesiaModel        = "sonic-multilingual"
	cartesiaDefaultVoice = "a0e99841-438c-4a64-b679-ae501e7d6091" // Barbershop Man
	cartesiaWomanVoice   = "79a125e8-cd45-4c13-8a67-188112f4dd22" // British Lady
	cartesiaSlowSpeed    = 0.7
)

// CartesiaVoices holds one voice ID per style. Empty man/woman IDs fall back to stock voices.
type CartesiaVoices struct {
	Normal string
	Man    string
	Woman  string
}

type CartesiaService struct {
	apiKey     string
	apiURL     string
	apiVersion string
	voices     CartesiaVoices
	client     *http.Client
}

// Ensure CartesiaService implements TTSService at compile time.
var _ TTSService = (*CartesiaService)(nil)

func NewCartesiaService(apiKey, apiURL string, voices CartesiaVoices) *CartesiaService {
	if voices.Normal == "" {
		voices.Normal = cartesiaDefaultVoice
	}
	if voices.Man == "" {
		voices.Man = cartesiaDefaultVoice
	}
	if voices.Woman == "" {
		voices.Woman = cartesiaWomanVoice
	}
	return &CartesiaService{
		apiKey:     apiKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiVersion: CartesiaAPIVersion,
		voices:     voices,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// CartesiaRequest matches the Cartesia /tts/bytes API
type CartesiaRequest struct {
	ModelID      string                    `json:"model_id"`
	Transcript   string                    `json:"transcript"`
	Voice        CartesiaVoiceSpecifier    `json:"voice"`
	Language     string                    `json:"language,omitempty"`
	OutputFormat CartesiaOutputFormat      `json:"output_format"`
	Config       *CartesiaGenerationConfig `json:"generation_config,omitempty"`
}

type CartesiaVoiceSpecifier struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type CartesiaOutputFormat struct {
	Container  string `json:"container"`
	SampleRate int    `json:"sample_rate"`
	BitRate    int    `json:"bit_rate,omitempty"`
}

type CartesiaGenerationConfig struct {
	Speed *float64 `json:"speed,omitempty"` // 0.6 to 1.5
}

func (s *CartesiaService) Describe() BackendInfo {
	return BackendInfo{
		Name:            "cartesia",
		DefaultLanguage: "en",
		Styles:          models.AllVoiceStyles,
	}
}

func (s *CartesiaService) ValidateLanguage(language string) error {
	return checkLanguageTag(language)
}

// GenerateSpeech generates audio from text using Cartesia TTS.
func (s *CartesiaService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	reqBody := CartesiaRequest{
		ModelID:    cartesiaModel,
		Transcript: req.Text,
		Voice: CartesiaVoiceSpecifier{
			Mode: "id",
			ID:   styleVoiceID(req.Style, s.voices.Normal, s.voices.Man, s.voices.Woman),
		},
		Language: baseLanguage(req.Language),
		OutputFormat: CartesiaOutputFormat{
			Container:  "mp3",
			SampleRate: 44100,
			BitRate:    192000,
		},
	}

	if req.Style == models.VoiceStyleSlow {
		speed := cartesiaSlowSpeed
		reqBody.Config = &CartesiaGenerationConfig{Speed: &speed}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/tts/bytes", s.apiURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cartesia-Version", s.apiVersion)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cartesia returned status %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	log.Printf("[Cartesia] Speech generated (%d bytes, voice=%s)", len(audioData), reqBody.Voice.ID)

	return &TTSResponse{
		AudioData: audioData,
		MIMEType:  MIMETypeMPEG,
		Format:    "mp3",
	}, nil
}
