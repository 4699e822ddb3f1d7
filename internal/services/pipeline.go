package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bobarin/voicegate/internal/models"
)

// Synthesizer runs one request through validation, pause humanization and the
// configured backend. It holds no per-request state and is safe for concurrent use.
type Synthesizer struct {
	backend TTSService
}

func NewSynthesizer(backend TTSService) *Synthesizer {
	return &Synthesizer{backend: backend}
}

// Backend returns the descriptor of the configured engine.
func (s *Synthesizer) Backend() BackendInfo {
	return s.backend.Describe()
}

// Generate validates req and returns the synthesized audio. Invalid input never
// reaches the backend. Nothing is retried.
func (s *Synthesizer) Generate(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	info := s.backend.Describe()

	if IsBlank(req.Text) {
		return nil, invalidField("text", "text is required")
	}

	if strings.TrimSpace(req.Language) == "" {
		req.Language = info.DefaultLanguage
	}
	if err := s.backend.ValidateLanguage(req.Language); err != nil {
		return nil, err
	}

	if req.Style == "" {
		req.Style = models.VoiceStyleNormal
	}
	if !info.SupportsStyle(req.Style) {
		return nil, invalidField("voice", "voice %q is not supported by %s (supported: %s)",
			req.Style, info.Name, joinStyles(info.Styles))
	}

	if info.RequiresReference && len(req.ReferenceAudio) == 0 {
		return nil, invalidField("voice_to_be_cloned", "a reference voice sample is required by %s", info.Name)
	}

	req.Text = HumanizePauses(strings.TrimSpace(req.Text))

	resp, err := s.backend.GenerateSpeech(ctx, req)
	if err != nil {
		log.Printf("[Synthesizer] %s failed (language=%q voice=%s textLen=%d): %v",
			info.Name, req.Language, req.Style, len(req.Text), err)
		return nil, fmt.Errorf("%s synthesis failed: %w", info.Name, err)
	}
	if resp == nil || len(resp.AudioData) == 0 {
		log.Printf("[Synthesizer] %s returned empty audio (language=%q voice=%s)", info.Name, req.Language, req.Style)
		return nil, fmt.Errorf("%s returned no audio", info.Name)
	}

	return resp, nil
}

func joinStyles(styles []models.VoiceStyle) string {
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
