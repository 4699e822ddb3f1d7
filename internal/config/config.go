package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Backend names accepted by TTS_BACKEND.
const (
	BackendGTTS       = "gtts"
	BackendESpeak     = "espeak"
	BackendXTTS       = "xtts"
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
	BackendElevenLabs = "elevenlabs"
	BackendCartesia   = "cartesia"
)

type Config struct {
	// Server
	APIPort            string `toml:"api_port"`
	CorsAllowedOrigins string `toml:"cors_allowed_origins"` // Comma-separated allowed origins (empty = *, dev mode)
	MaxUploadBytes     int64  `toml:"max_upload_bytes"`
	MaxLanguageLength  int    `toml:"max_language_length"`
	ResponseEncoding   string `toml:"response_encoding"` // "binary" or "base64"

	// Backend selection
	Backend    string `toml:"backend"`
	ScratchDir string `toml:"scratch_dir"` // Where per-request temp files live (empty = os.TempDir())

	// Logging
	LogFile       string `toml:"log_file"` // Empty = stdout only
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxBackups int    `toml:"log_max_backups"`
	LogMaxAgeDays int    `toml:"log_max_age_days"`

	// gTTS (Google Translate speech endpoint)
	GTTSBaseURL        string `toml:"gtts_base_url"`
	GTTSDefaultLang    string `toml:"gtts_default_language"`
	GTTSTimeoutSeconds int    `toml:"gtts_timeout_seconds"`

	// eSpeak NG (local engine)
	ESpeakBinary      string `toml:"espeak_binary"`
	ESpeakDefaultLang string `toml:"espeak_default_language"`
	ESpeakRate        int    `toml:"espeak_rate"`      // words per minute
	ESpeakSlowRate    int    `toml:"espeak_slow_rate"` // words per minute for the "slow" style

	// XTTS (voice cloning inference server)
	XTTSURL            string `toml:"xtts_url"`
	XTTSSampleRate     int    `toml:"xtts_sample_rate"`
	XTTSDefaultLang    string `toml:"xtts_default_language"`
	XTTSTimeoutSeconds int    `toml:"xtts_timeout_seconds"`

	// OpenAI speech
	OpenAIKey     string `toml:"openai_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	OpenAIModel   string `toml:"openai_model"`
	OpenAIVoice   string `toml:"openai_voice"`

	// Gemini speech
	GeminiKey     string `toml:"gemini_api_key"`
	GeminiBaseURL string `toml:"gemini_base_url"`
	GeminiModel   string `toml:"gemini_model"`
	GeminiVoice   string `toml:"gemini_voice"`

	// ElevenLabs
	ElevenLabsKey          string `toml:"elevenlabs_api_key"`
	ElevenLabsURL          string `toml:"elevenlabs_api_url"`
	ElevenLabsVoiceID      string `toml:"elevenlabs_voice_id"`
	ElevenLabsManVoiceID   string `toml:"elevenlabs_man_voice_id"`
	ElevenLabsWomanVoiceID string `toml:"elevenlabs_woman_voice_id"`

	// Cartesia
	CartesiaKey          string `toml:"cartesia_api_key"`
	CartesiaURL          string `toml:"cartesia_api_url"`
	CartesiaVoiceID      string `toml:"cartesia_voice_id"`
	CartesiaManVoiceID   string `toml:"cartesia_man_voice_id"`
	CartesiaWomanVoiceID string `toml:"cartesia_woman_voice_id"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		APIPort:            "8000",
		MaxUploadBytes:     10 << 20,
		MaxLanguageLength:  5,
		ResponseEncoding:   "binary",
		Backend:            BackendGTTS,
		LogMaxSizeMB:       50,
		LogMaxBackups:      3,
		LogMaxAgeDays:      28,
		GTTSBaseURL:        "https://translate.google.com",
		GTTSDefaultLang:    "pt",
		GTTSTimeoutSeconds: 30,
		ESpeakBinary:       "espeak-ng",
		ESpeakDefaultLang:  "pt",
		ESpeakRate:         160,
		ESpeakSlowRate:     110,
		XTTSURL:            "http://localhost:8020",
		XTTSSampleRate:     22050,
		XTTSDefaultLang:    "pt",
		XTTSTimeoutSeconds: 300,
		OpenAIModel:        "tts-1",
		OpenAIVoice:        "alloy",
		GeminiModel:        "gemini-2.5-flash-preview-tts",
		GeminiVoice:        "Kore",
		ElevenLabsURL:      "https://api.elevenlabs.io",
		CartesiaURL:        "https://api.cartesia.ai",
	}
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays a TOML file onto cfg. Keys missing from the file keep their current value.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides cfg with any environment variable that is set.
func applyEnv(cfg *Config) {
	cfg.APIPort = getEnv("API_PORT", cfg.APIPort)
	cfg.CorsAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CorsAllowedOrigins)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.MaxLanguageLength = getEnvInt("MAX_LANGUAGE_LENGTH", cfg.MaxLanguageLength)
	cfg.ResponseEncoding = getEnv("RESPONSE_ENCODING", cfg.ResponseEncoding)

	cfg.Backend = strings.ToLower(getEnv("TTS_BACKEND", cfg.Backend))
	cfg.ScratchDir = getEnv("SCRATCH_DIR", cfg.ScratchDir)

	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", cfg.LogMaxSizeMB)
	cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", cfg.LogMaxBackups)
	cfg.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", cfg.LogMaxAgeDays)

	cfg.GTTSBaseURL = getEnv("GTTS_BASE_URL", cfg.GTTSBaseURL)
	cfg.GTTSDefaultLang = getEnv("GTTS_DEFAULT_LANGUAGE", cfg.GTTSDefaultLang)
	cfg.GTTSTimeoutSeconds = getEnvInt("GTTS_TIMEOUT_SECONDS", cfg.GTTSTimeoutSeconds)

	cfg.ESpeakBinary = getEnv("ESPEAK_BINARY", cfg.ESpeakBinary)
	cfg.ESpeakDefaultLang = getEnv("ESPEAK_DEFAULT_LANGUAGE", cfg.ESpeakDefaultLang)
	cfg.ESpeakRate = getEnvInt("ESPEAK_RATE", cfg.ESpeakRate)
	cfg.ESpeakSlowRate = getEnvInt("ESPEAK_SLOW_RATE", cfg.ESpeakSlowRate)

	cfg.XTTSURL = getEnv("XTTS_URL", cfg.XTTSURL)
	cfg.XTTSSampleRate = getEnvInt("XTTS_SAMPLE_RATE", cfg.XTTSSampleRate)
	cfg.XTTSDefaultLang = getEnv("XTTS_DEFAULT_LANGUAGE", cfg.XTTSDefaultLang)
	cfg.XTTSTimeoutSeconds = getEnvInt("XTTS_TIMEOUT_SECONDS", cfg.XTTSTimeoutSeconds)

	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = getEnv("OPENAI_TTS_MODEL", cfg.OpenAIModel)
	cfg.OpenAIVoice = getEnv("OPENAI_TTS_VOICE", cfg.OpenAIVoice)

	cfg.GeminiKey = getEnv("GEMINI_API_KEY", cfg.GeminiKey)
	cfg.GeminiBaseURL = getEnv("GEMINI_BASE_URL", cfg.GeminiBaseURL)
	cfg.GeminiModel = getEnv("GEMINI_TTS_MODEL", cfg.GeminiModel)
	cfg.GeminiVoice = getEnv("GEMINI_TTS_VOICE", cfg.GeminiVoice)

	cfg.ElevenLabsKey = getEnv("ELEVENLABS_API_KEY", cfg.ElevenLabsKey)
	cfg.ElevenLabsURL = getEnv("ELEVENLABS_API_URL", cfg.ElevenLabsURL)
	cfg.ElevenLabsVoiceID = getEnv("ELEVENLABS_VOICE_ID", cfg.ElevenLabsVoiceID)
	cfg.ElevenLabsManVoiceID = getEnv("ELEVENLABS_MAN_VOICE_ID", cfg.ElevenLabsManVoiceID)
	cfg.ElevenLabsWomanVoiceID = getEnv("ELEVENLABS_WOMAN_VOICE_ID", cfg.ElevenLabsWomanVoiceID)

	cfg.CartesiaKey = getEnv("CARTESIA_API_KEY", cfg.CartesiaKey)
	cfg.CartesiaURL = getEnv("CARTESIA_API_URL", cfg.CartesiaURL)
	cfg.CartesiaVoiceID = getEnv("CARTESIA_VOICE_ID", cfg.CartesiaVoiceID)
	cfg.CartesiaManVoiceID = getEnv("CARTESIA_MAN_VOICE_ID", cfg.CartesiaManVoiceID)
	cfg.CartesiaWomanVoiceID = getEnv("CARTESIA_WOMAN_VOICE_ID", cfg.CartesiaWomanVoiceID)
}

// Validate checks the fields the selected backend needs.
func (c *Config) Validate() error {
	if c.MaxLanguageLength <= 0 {
		return fmt.Errorf("MAX_LANGUAGE_LENGTH must be positive")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	switch strings.ToLower(c.ResponseEncoding) {
	case "binary", "base64":
	default:
		return fmt.Errorf("RESPONSE_ENCODING must be binary or base64, got %q", c.ResponseEncoding)
	}

	switch c.Backend {
	case BackendGTTS:
		if c.GTTSBaseURL == "" {
			return fmt.Errorf("GTTS_BASE_URL is required when TTS_BACKEND=gtts")
		}
	case BackendESpeak:
		if c.ESpeakBinary == "" {
			return fmt.Errorf("ESPEAK_BINARY is required when TTS_BACKEND=espeak")
		}
		if c.ESpeakRate <= 0 || c.ESpeakSlowRate <= 0 {
			return fmt.Errorf("ESPEAK_RATE and ESPEAK_SLOW_RATE must be positive")
		}
	case BackendXTTS:
		if c.XTTSURL == "" {
			return fmt.Errorf("XTTS_URL is required when TTS_BACKEND=xtts")
		}
		if c.XTTSSampleRate <= 0 {
			return fmt.Errorf("XTTS_SAMPLE_RATE must be positive")
		}
	case BackendOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TTS_BACKEND=openai")
		}
	case BackendGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when TTS_BACKEND=gemini")
		}
	case BackendElevenLabs:
		if c.ElevenLabsKey == "" {
			return fmt.Errorf("ELEVENLABS_API_KEY is required when TTS_BACKEND=elevenlabs")
		}
	case BackendCartesia:
		if c.CartesiaKey == "" {
			return fmt.Errorf("CARTESIA_API_KEY is required when TTS_BACKEND=cartesia")
		}
	default:
		return fmt.Errorf("unknown TTS_BACKEND %q (allowed: gtts, espeak, xtts, openai, gemini, elevenlabs, cartesia)", c.Backend)
	}

	return nil
}

// Secrets returns every configured credential, for scrubbing from client-facing messages.
func (c *Config) Secrets() []string {
	var out []string
	for _, s := range []string{c.OpenAIKey, c.GeminiKey, c.ElevenLabsKey, c.CartesiaKey} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
