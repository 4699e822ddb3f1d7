package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bobarin/voicegate/internal/models"
)

// ---------------------------------------------------------------------------
// gTTS: Google Translate speech endpoint
// Stateless: every token is one batchexecute RPC, MP3 parts are concatenated.
// ---------------------------------------------------------------------------

const (
	gttsRPCID        = "jQ1olc"
	gttsRPCPath      = "/_/TranslateFrontendUi/data/batchexecute"
	gttsMaxTokenLen  = 100
	gttsUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	gttsContentType  = "application/x-www-form-urlencoded;charset=utf-8"
	gttsErrorBodyMax = 300
)

var gttsAudioRe = regexp.MustCompile(`jQ1olc","\[\\"(.*)\\"]`)

// GTTSService speaks through translate.google.com.
type GTTSService struct {
	baseURL         string
	defaultLanguage string
	client          *http.Client
}

// Ensure GTTSService implements TTSService at compile time.
var _ TTSService = (*GTTSService)(nil)

func NewGTTSService(baseURL, defaultLanguage string, timeout time.Duration) *GTTSService {
	return &GTTSService{
		baseURL:         strings.TrimRight(baseURL, "/"),
		defaultLanguage: defaultLanguage,
		client:          &http.Client{Timeout: timeout},
	}
}

func (s *GTTSService) Describe() BackendInfo {
	return BackendInfo{
		Name:            "gtts",
		DefaultLanguage: s.defaultLanguage,
		Languages:       sortedKeys(gttsLanguages),
		Styles:          []models.VoiceStyle{models.VoiceStyleNormal, models.VoiceStyleSlow},
	}
}

func (s *GTTSService) ValidateLanguage(language string) error {
	if _, ok := gttsLanguages[normalizeLanguage(language)]; !ok {
		return unsupportedLanguage(language)
	}
	return nil
}

func (s *GTTSService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	tokens := splitText(req.Text, gttsMaxTokenLen)
	if len(tokens) == 0 {
		return nil, invalidField("text", "text is required")
	}

	lang := gttsLanguageParam(req.Language)
	slow := req.Style == models.VoiceStyleSlow

	var audio bytes.Buffer
	for i, token := range tokens {
		part, err := s.fetchToken(ctx, token, lang, slow)
		if err != nil {
			return nil, fmt.Errorf("token %d/%d: %w", i+1, len(tokens), err)
		}
		audio.Write(part)
	}

	log.Printf("[gTTS] Generated %d bytes of MP3 from %d token(s) (lang=%s slow=%v)", audio.Len(), len(tokens), lang, slow)

	return &TTSResponse{
		AudioData: audio.Bytes(),
		MIMEType:  MIMETypeMPEG,
		Format:    "mp3",
	}, nil
}

func (s *GTTSService) fetchToken(ctx context.Context, token, lang string, slow bool) ([]byte, error) {
	body, err := gttsRequestBody(token, lang, slow)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+gttsRPCPath, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", gttsContentType)
	req.Header.Set("Referer", s.baseURL+"/")
	req.Header.Set("User-Agent", gttsUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, gttsErrorBodyMax))
		return nil, fmt.Errorf("gtts returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var audio bytes.Buffer
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 16<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, gttsRPCID) {
			continue
		}
		m := gttsAudioRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			return nil, fmt.Errorf("failed to decode gtts audio: %w", err)
		}
		audio.Write(decoded)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gtts response: %w", err)
	}

	if audio.Len() == 0 {
		return nil, fmt.Errorf("no audio stream in gtts response for language %q", lang)
	}
	return audio.Bytes(), nil
}

// gttsRequestBody builds the f.req form field: a JSON-encoded RPC whose parameter
// list is itself JSON-encoded as a string.
func gttsRequestBody(text, lang string, slow bool) (string, error) {
	var speed any // null = normal speed
	if slow {
		speed = true
	}
	param, err := json.Marshal([]any{text, lang, speed, "null"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal gtts parameters: %w", err)
	}
	rpc, err := json.Marshal([][][]any{{{gttsRPCID, string(param), nil, "generic"}}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal gtts rpc: %w", err)
	}
	return "f.req=" + url.QueryEscape(string(rpc)) + "&", nil
}

// gttsLanguageParam restores the casing the endpoint expects ("zh-cn" -> "zh-CN").
func gttsLanguageParam(code string) string {
	n := normalizeLanguage(code)
	base, region, ok := strings.Cut(n, "-")
	if !ok {
		return n
	}
	return base + "-" + strings.ToUpper(region)
}
