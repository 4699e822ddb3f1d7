package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bobarin/voicegate/internal/config"
)

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg *config.Config) (TTSService, error) {
	switch cfg.Backend {
	case config.BackendGTTS:
		return NewGTTSService(cfg.GTTSBaseURL, cfg.GTTSDefaultLang, seconds(cfg.GTTSTimeoutSeconds)), nil

	case config.BackendESpeak:
		return NewESpeakService(ESpeakOptions{
			Binary:          cfg.ESpeakBinary,
			DefaultLanguage: cfg.ESpeakDefaultLang,
			Rate:            cfg.ESpeakRate,
			SlowRate:        cfg.ESpeakSlowRate,
			ScratchDir:      cfg.ScratchDir,
		}, ExecRunner), nil

	case config.BackendXTTS:
		return NewXTTSService(XTTSOptions{
			BaseURL:         cfg.XTTSURL,
			DefaultLanguage: cfg.XTTSDefaultLang,
			SampleRate:      cfg.XTTSSampleRate,
			ScratchDir:      cfg.ScratchDir,
			Timeout:         seconds(cfg.XTTSTimeoutSeconds),
		}), nil

	case config.BackendOpenAI:
		return NewOpenAIService(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIVoice), nil

	case config.BackendGemini:
		svc, err := NewGeminiService(ctx, cfg.GeminiKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiVoice, cfg.ScratchDir)
		if err != nil {
			return nil, err
		}
		return svc, nil

	case config.BackendElevenLabs:
		return NewElevenLabsService(cfg.ElevenLabsKey, cfg.ElevenLabsURL, ElevenLabsVoices{
			Normal: cfg.ElevenLabsVoiceID,
			Man:    cfg.ElevenLabsManVoiceID,
			Woman:  cfg.ElevenLabsWomanVoiceID,
		}), nil

	case config.BackendCartesia:
		return NewCartesiaService(cfg.CartesiaKey, cfg.CartesiaURL, CartesiaVoices{
			Normal: cfg.CartesiaVoiceID,
			Man:    cfg.CartesiaManVoiceID,
			Woman:  cfg.CartesiaWomanVoiceID,
		}), nil
	}
	return nil, fmt.Errorf("unknown TTS backend %q", cfg.Backend)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
