package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bobarin/voicegate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerateSpeech(t *testing.T) {
	t.Parallel()

	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		got = append(got, body)

		w.Header().Set("Content-Type", "audio/mpeg")
		fmt.Fprintf(w, "MP3:%v", body["voice"])
	}))
	t.Cleanup(srv.Close)

	svc := NewOpenAIService("sk-test", srv.URL+"/v1", "tts-1", "alloy")
	ctx := context.Background()

	man, err := svc.GenerateSpeech(ctx, SynthesisRequest{Text: "hello", Language: "en", Style: models.VoiceStyleMan})
	require.NoError(t, err)
	woman, err := svc.GenerateSpeech(ctx, SynthesisRequest{Text: "hello", Language: "en", Style: models.VoiceStyleWoman})
	require.NoError(t, err)
	_, err = svc.GenerateSpeech(ctx, SynthesisRequest{Text: "hello", Language: "en", Style: models.VoiceStyleSlow})
	require.NoError(t, err)

	assert.Equal(t, "MP3:onyx", string(man.AudioData))
	assert.Equal(t, "MP3:nova", string(woman.AudioData))
	assert.Equal(t, MIMETypeMPEG, man.MIMEType)

	require.Len(t, got, 3)
	assert.Equal(t, "tts-1", got[0]["model"])
	assert.Equal(t, "alloy", got[2]["voice"])
	assert.Equal(t, openAISlowSpeed, got[2]["speed"])
}

func TestGeminiGenerateSpeech(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, 2*24000) // one second of silence at 24 kHz
	var voices, languages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)

		var body struct {
			GenerationConfig struct {
				SpeechConfig struct {
					VoiceConfig struct {
						PrebuiltVoiceConfig struct {
							VoiceName string `json:"voiceName"`
						} `json:"prebuiltVoiceConfig"`
					} `json:"voiceConfig"`
					LanguageCode string `json:"languageCode"`
				} `json:"speechConfig"`
			} `json:"generationConfig"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		voices = append(voices, body.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
		languages = append(languages, body.GenerationConfig.SpeechConfig.LanguageCode)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"audio/L16;codec=pcm;rate=24000","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(pcm))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	svc, err := NewGeminiService(context.Background(), "g-test", srv.URL+"/", "gemini-2.5-flash-preview-tts", "Zephyr", dir)
	require.NoError(t, err)

	resp, err := svc.GenerateSpeech(context.Background(), SynthesisRequest{Text: "hello", Language: "en", Style: models.VoiceStyleWoman})
	require.NoError(t, err)
	_, err = svc.GenerateSpeech(context.Background(), SynthesisRequest{Text: "olá", Language: "pt-br"})
	require.NoError(t, err)

	assert.Equal(t, MIMETypeWAV, resp.MIMEType)
	assert.InDelta(t, 1.0, wavDuration(t, resp.AudioData).Seconds(), 0.01)
	assert.Equal(t, []string{geminiWomanVoice, "Zephyr"}, voices)
	assert.Equal(t, []string{"", "pt-BR"}, languages, "bare codes are left to detection")
	requireEmptyDir(t, dir)
}

func TestTruncateStringKeepsRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "olá", truncateString("olá", 3))
	got := truncateString("ééééé", 3)
	assert.Equal(t, "ééé...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestPCMRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 16000, pcmRate("audio/L16;codec=pcm;rate=16000", 24000))
	assert.Equal(t, 24000, pcmRate("audio/L16", 24000))
}

func TestElevenLabsGenerateSpeech(t *testing.T) {
	t.Parallel()

	var speeds []float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, elevenLabsOutputFormat, r.URL.Query().Get("output_format"))

		var body elevenLabsRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "pt", body.LanguageCode)
		speeds = append(speeds, body.VoiceSettings.Speed)

		fmt.Fprint(w, "MP3:"+strings.TrimPrefix(r.URL.Path, "/v1/text-to-speech/"))
	}))
	t.Cleanup(srv.Close)

	svc := NewElevenLabsService("el-key", srv.URL, ElevenLabsVoices{Normal: "v-normal", Man: "v-man"})
	ctx := context.Background()

	man, err := svc.GenerateSpeech(ctx, SynthesisRequest{Text: "oi", Language: "pt-BR", Style: models.VoiceStyleMan})
	require.NoError(t, err)
	woman, err := svc.GenerateSpeech(ctx, SynthesisRequest{Text: "oi", Language: "pt-BR", Style: models.VoiceStyleWoman})
	require.NoError(t, err)
	slow, err := svc.GenerateSpeech(ctx, SynthesisRequest{Text: "oi", Language: "pt", Style: models.VoiceStyleSlow})
	require.NoError(t, err)

	assert.Equal(t, "MP3:v-man", string(man.AudioData))
	assert.Equal(t, "MP3:"+elevenLabsWomanVoice, string(woman.AudioData))
	assert.Equal(t, "MP3:v-normal", string(slow.AudioData))
	assert.Equal(t, []float64{1.0, 1.0, elevenLabsSlowSpeed}, speeds)
}

func TestCartesiaGenerateSpeech(t *testing.T) {
	t.Parallel()

	var bodies []CartesiaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tts/bytes", r.URL.Path)
		assert.Equal(t, "Bearer ck-key", r.Header.Get("Authorization"))
		assert.Equal(t, CartesiaAPIVersion, r.Header.Get("Cartesia-Version"))

		var body CartesiaRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		bodies = append(bodies, body)
		fmt.Fprint(w, "MP3:"+body.Voice.ID)
	}))
	t.Cleanup(srv.Close)

	svc := NewCartesiaService("ck-key", srv.URL, CartesiaVoices{Woman: "v-woman"})
	ctx := context.Background()

	woman, err := svc.GenerateSpeech(ctx, SynthesisRequest{Text: "hola", Language: "es", Style: models.VoiceStyleWoman})
	require.NoError(t, err)
	_, err = svc.GenerateSpeech(ctx, SynthesisRequest{Text: "hola", Language: "es", Style: models.VoiceStyleSlow})
	require.NoError(t, err)

	assert.Equal(t, "MP3:v-woman", string(woman.AudioData))
	require.Len(t, bodies, 2)
	assert.Nil(t, bodies[0].Config)
	require.NotNil(t, bodies[1].Config)
	assert.Equal(t, cartesiaSlowSpeed, *bodies[1].Config.Speed)
	assert.Equal(t, "es", bodies[1].Language)
}

func TestCloudUpstreamErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusPaymentRequired)
	}))
	t.Cleanup(srv.Close)

	backends := map[string]TTSService{
		"elevenlabs": NewElevenLabsService("k", srv.URL, ElevenLabsVoices{}),
		"cartesia":   NewCartesiaService("k", srv.URL, CartesiaVoices{}),
		"openai":     NewOpenAIService("k", srv.URL+"/v1", "", ""),
	}
	for name, svc := range backends {
		_, err := svc.GenerateSpeech(context.Background(), SynthesisRequest{Text: "hi", Language: "en"})
		assert.Error(t, err, name)
		assert.NotErrorIs(t, err, ErrInvalidInput, name)
	}
}

func TestCloudBackendsAcceptTags(t *testing.T) {
	t.Parallel()

	for _, svc := range []TTSService{
		NewElevenLabsService("k", "http://unused", ElevenLabsVoices{}),
		NewCartesiaService("k", "http://unused", CartesiaVoices{}),
		NewOpenAIService("k", "", "", ""),
	} {
		assert.NoError(t, svc.ValidateLanguage("pt-BR"))
		assert.ErrorIs(t, svc.ValidateLanguage("xx-invalid"), ErrInvalidInput)
		assert.ElementsMatch(t, models.AllVoiceStyles, svc.Describe().Styles)
	}
}
