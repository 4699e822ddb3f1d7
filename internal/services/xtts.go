package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bobarin/voicegate/internal/models"
)

// ---------------------------------------------------------------------------
// XTTS: voice cloning through an XTTS inference server
// The reference sample is written to a per-call temp file whose path is sent
// to the server, so the server must share SCRATCH_DIR with this process.
// ---------------------------------------------------------------------------

const (
	xttsSynthesizePath = "/synthesize"
	xttsSlowSpeed      = 0.8
	xttsRemediation    = "start the XTTS inference server or point XTTS_URL at it"
)

var xttsLanguages = []string{"en", "es", "pt"}

type XTTSOptions struct {
	BaseURL         string
	DefaultLanguage string
	SampleRate      int
	ScratchDir      string
	Timeout         time.Duration
}

type XTTSService struct {
	opts   XTTSOptions
	client *http.Client
}

// Ensure XTTSService implements TTSService at compile time.
var _ TTSService = (*XTTSService)(nil)

func NewXTTSService(opts XTTSOptions) *XTTSService {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &XTTSService{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

type xttsRequest struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	SpeakerWav string  `json:"speaker_wav"`
	Speed      float64 `json:"speed"`
}

type xttsResponse struct {
	Wav        []float64 `json:"wav"`
	SampleRate int       `json:"sample_rate,omitempty"`
}

type xttsErrorResponse struct {
	Detail string `json:"detail"`
}

func (s *XTTSService) Describe() BackendInfo {
	return BackendInfo{
		Name:              "xtts",
		DefaultLanguage:   s.opts.DefaultLanguage,
		Languages:         xttsLanguages,
		Styles:            []models.VoiceStyle{models.VoiceStyleNormal, models.VoiceStyleSlow},
		RequiresReference: true,
	}
}

func (s *XTTSService) ValidateLanguage(language string) error {
	return checkLanguageIn(language, xttsLanguages)
}

func (s *XTTSService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	if len(req.ReferenceAudio) == 0 {
		return nil, invalidField("voice_to_be_cloned", "a reference voice sample is required")
	}

	refPath, err := writeScratchFile(s.opts.ScratchDir, "xtts-ref-*.wav", req.ReferenceAudio)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(refPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[XTTS] failed to remove reference file %s: %v", refPath, rmErr)
		}
	}()

	speed := 1.0
	if req.Style == models.VoiceStyleSlow {
		speed = xttsSlowSpeed
	}

	wave, rate, err := s.synthesize(ctx, xttsRequest{
		Text:       req.Text,
		Language:   normalizeLanguage(req.Language),
		SpeakerWav: refPath,
		Speed:      speed,
	})
	if err != nil {
		return nil, err
	}
	if len(wave) == 0 {
		return nil, errors.New("xtts returned an empty waveform")
	}

	data, err := EncodeWAV(FloatsToPCM16(wave), rate, s.opts.ScratchDir)
	if err != nil {
		return nil, err
	}

	log.Printf("[XTTS] Generated %d samples at %d Hz (%d bytes)", len(wave), rate, len(data))

	return &TTSResponse{
		AudioData: data,
		MIMEType:  MIMETypeWAV,
		Format:    "wav",
	}, nil
}

func (s *XTTSService) synthesize(ctx context.Context, body xttsRequest) ([]float64, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal XTTS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+xttsSynthesizePath, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("xtts request cancelled: %w", err)
		}
		return nil, 0, &UnavailableError{Engine: "xtts server at " + s.opts.BaseURL, Remediation: xttsRemediation, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read XTTS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr xttsErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Detail != "" {
			return nil, 0, fmt.Errorf("xtts returned status %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return nil, 0, fmt.Errorf("xtts returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out xttsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode XTTS response: %w", err)
	}

	rate := out.SampleRate
	if rate <= 0 {
		rate = s.opts.SampleRate
	}
	return out.Wav, rate, nil
}

// writeScratchFile stores data in a fresh temp file and returns its path.
func writeScratchFile(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), nil
}
