package services

import (
	"context"
	"testing"

	"github.com/bobarin/voicegate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		config.BackendGTTS,
		config.BackendESpeak,
		config.BackendXTTS,
		config.BackendOpenAI,
		config.BackendGemini,
		config.BackendElevenLabs,
		config.BackendCartesia,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Defaults()
			cfg.Backend = name
			cfg.OpenAIKey = "sk"
			cfg.GeminiKey = "g"
			cfg.ElevenLabsKey = "el"
			cfg.CartesiaKey = "ck"

			svc, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, name, svc.Describe().Name)
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Backend = "festival"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
