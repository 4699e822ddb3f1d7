package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bobarin/voicegate/internal/models"
	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Gemini speech generation
// The model answers with raw 16-bit PCM which is wrapped into WAV here.
// ---------------------------------------------------------------------------

const (
	geminiDefaultRate = 24000
	geminiManVoice    = "Puck"
	geminiWomanVoice  = "Kore"
	geminiSlowPrompt  = "Say slowly and clearly: "
)

type GeminiService struct {
	client     *genai.Client
	model      string
	voice      string
	scratchDir string
}

// Ensure GeminiService implements TTSService at compile time.
var _ TTSService = (*GeminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey, baseURL, model, voice, scratchDir string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		client:     client,
		model:      model,
		voice:      voice,
		scratchDir: scratchDir,
	}, nil
}

func (s *GeminiService) Describe() BackendInfo {
	return BackendInfo{
		Name:            "gemini",
		DefaultLanguage: "en",
		Styles:          models.AllVoiceStyles,
	}
}

func (s *GeminiService) ValidateLanguage(language string) error {
	return checkLanguageTag(language)
}

func (s *GeminiService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	voice := s.voice
	prompt := req.Text
	switch req.Style {
	case models.VoiceStyleMan:
		voice = geminiManVoice
	case models.VoiceStyleWoman:
		voice = geminiWomanVoice
	case models.VoiceStyleSlow:
		prompt = geminiSlowPrompt + req.Text
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: regionalLanguage(req.Language),
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	pcm, mimeType, err := geminiAudio(resp)
	if err != nil {
		return nil, err
	}

	rate := pcmRate(mimeType, geminiDefaultRate)
	data, err := EncodeWAV(PCM16LEToSamples(pcm), rate, s.scratchDir)
	if err != nil {
		return nil, err
	}

	log.Printf("[Gemini] Generated %d bytes of PCM at %d Hz (voice=%s)", len(pcm), rate, voice)

	return &TTSResponse{
		AudioData: data,
		MIMEType:  MIMETypeWAV,
		Format:    "wav",
	}, nil
}

// geminiAudio returns the first inline audio part of the first candidate.
func geminiAudio(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", errors.New("no candidates in gemini response")
	}
	var textParts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
		if part.Text != "" {
			textParts = append(textParts, part.Text)
		}
	}
	if len(textParts) > 0 {
		return nil, "", fmt.Errorf("gemini returned text instead of audio: %s", truncateString(textParts[0], 200))
	}
	return nil, "", errors.New("no audio data found in gemini response")
}

// pcmRate reads the rate parameter of a mime type such as "audio/L16;codec=pcm;rate=24000".
func pcmRate(mimeType string, fallback int) int {
	for _, param := range strings.Split(mimeType, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(k, "rate") {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// truncateString truncates a string to maxLen and appends "..." if truncated.
// The cut falls on a rune boundary.
func truncateString(s string, maxLen int) string {
	cut := prefixRunes(s, maxLen)
	if len(cut) == len(s) {
		return s
	}
	return cut + "..."
}
