package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/bobarin/voicegate/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI speech (audio/speech endpoint)
// man/woman are mapped onto fixed stock voices; the mapping is a best effort.
// ---------------------------------------------------------------------------

const (
	openAIManVoice   = openai.VoiceOnyx
	openAIWomanVoice = openai.VoiceNova
	openAISlowSpeed  = 0.75
)

type OpenAIService struct {
	client *openai.Client
	model  string
	voice  string
}

// Ensure OpenAIService implements TTSService at compile time.
var _ TTSService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey, baseURL, model, voice string) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		voice:  voice,
	}
}

func (s *OpenAIService) Describe() BackendInfo {
	return BackendInfo{
		Name:            "openai",
		DefaultLanguage: "en",
		Styles:          models.AllVoiceStyles,
	}
}

// ValidateLanguage accepts any well-formed tag; the model infers language from the text.
func (s *OpenAIService) ValidateLanguage(language string) error {
	return checkLanguageTag(language)
}

func (s *OpenAIService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	voice := openai.SpeechVoice(s.voice)
	var speed float64 // 0 = API default
	switch req.Style {
	case models.VoiceStyleMan:
		voice = openAIManVoice
	case models.VoiceStyleWoman:
		voice = openAIWomanVoice
	case models.VoiceStyleSlow:
		speed = openAISlowSpeed
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech request failed: %w", err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read openai audio: %w", err)
	}

	log.Printf("[OpenAI] Generated %d bytes (model=%s voice=%s)", len(audioData), s.model, voice)

	return &TTSResponse{
		AudioData: audioData,
		MIMEType:  MIMETypeMPEG,
		Format:    "mp3",
	}, nil
}
