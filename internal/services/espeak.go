package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bobarin/voicegate/internal/models"
)

// ---------------------------------------------------------------------------
// eSpeak NG: local engine
// A fresh espeak-ng process runs for every call; nothing is shared between
// requests except the immutable configuration below.
// ---------------------------------------------------------------------------

const espeakRemediation = "install espeak-ng (e.g. apt-get install espeak-ng) or point ESPEAK_BINARY at it"

// CommandRunner executes name with args, feeding stdin, and returns combined output.
type CommandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// ExecRunner runs real processes.
func ExecRunner(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	return cmd.CombinedOutput()
}

// ESpeakVoice is one row of `espeak-ng --voices`.
type ESpeakVoice struct {
	Language string
	Gender   string // "M", "F" or "-"
	Name     string
	File     string
}

// ID is the identifier passed to -v. The voice file path names one exact voice
// even when several share a language code.
func (v ESpeakVoice) ID() string {
	if v.File != "" {
		return v.File
	}
	return v.Language
}

type ESpeakOptions struct {
	Binary          string
	DefaultLanguage string
	Rate            int // words per minute
	SlowRate        int
	ScratchDir      string
}

type ESpeakService struct {
	opts ESpeakOptions
	run  CommandRunner
}

// Ensure ESpeakService implements TTSService at compile time.
var _ TTSService = (*ESpeakService)(nil)

func NewESpeakService(opts ESpeakOptions, run CommandRunner) *ESpeakService {
	if run == nil {
		run = ExecRunner
	}
	if opts.Binary == "" {
		opts.Binary = "espeak-ng"
	}
	return &ESpeakService{opts: opts, run: run}
}

func (s *ESpeakService) Describe() BackendInfo {
	return BackendInfo{
		Name:            "espeak",
		DefaultLanguage: s.opts.DefaultLanguage,
		Styles:          models.AllVoiceStyles,
	}
}

// ValidateLanguage accepts any well-formed tag; unknown ones fall back to the first installed voice.
func (s *ESpeakService) ValidateLanguage(language string) error {
	return checkLanguageTag(language)
}

func (s *ESpeakService) GenerateSpeech(ctx context.Context, req SynthesisRequest) (*TTSResponse, error) {
	voices, err := s.Voices(ctx)
	if err != nil {
		return nil, err
	}
	if len(voices) == 0 {
		return nil, &UnavailableError{Engine: "espeak-ng", Remediation: espeakRemediation, Err: errors.New("no voices installed")}
	}

	voice := selectESpeakVoice(voices, req.Language, req.Style)
	voiceArg := voice.ID() + styleVariant(req.Style)

	rate := s.opts.Rate
	if req.Style == models.VoiceStyleSlow {
		rate = s.opts.SlowRate
	}

	tmp, err := os.CreateTemp(s.opts.ScratchDir, "espeak-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[eSpeak] failed to remove temp file %s: %v", tmpPath, rmErr)
		}
	}()

	args := []string{"-v", voiceArg, "-s", strconv.Itoa(rate), "-w", tmpPath, "--stdin"}
	if out, err := s.run(ctx, []byte(req.Text), s.opts.Binary, args...); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &UnavailableError{Engine: "espeak-ng", Remediation: espeakRemediation, Err: err}
		}
		return nil, fmt.Errorf("espeak-ng failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read espeak output: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("espeak-ng produced no audio")
	}

	log.Printf("[eSpeak] Generated %d bytes (voice=%s rate=%d)", len(data), voiceArg, rate)

	return &TTSResponse{
		AudioData: data,
		MIMEType:  MIMETypeWAV,
		Format:    "wav",
	}, nil
}

// Voices lists the installed voices.
func (s *ESpeakService) Voices(ctx context.Context) ([]ESpeakVoice, error) {
	out, err := s.run(ctx, nil, s.opts.Binary, "--voices")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &UnavailableError{Engine: "espeak-ng", Remediation: espeakRemediation, Err: err}
		}
		return nil, fmt.Errorf("failed to list espeak voices: %w", err)
	}
	return parseESpeakVoices(out), nil
}

// parseESpeakVoices reads the table printed by --voices:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  pt             --/M      Portuguese_(Brazil) roa/pt
func parseESpeakVoices(out []byte) []ESpeakVoice {
	var voices []ESpeakVoice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		gender := "-"
		if _, g, ok := strings.Cut(fields[2], "/"); ok && g != "" {
			gender = strings.ToUpper(g)
		}
		voices = append(voices, ESpeakVoice{
			Language: fields[1],
			Gender:   gender,
			Name:     fields[3],
			File:     fields[4],
		})
	}
	return voices
}

// selectESpeakVoice prefers an exact language match, then a substring match on
// language, name or file, then the first voice. Among candidates, a voice whose
// gender matches man/woman wins.
func selectESpeakVoice(voices []ESpeakVoice, language string, style models.VoiceStyle) ESpeakVoice {
	lang := normalizeLanguage(language)

	var exact, partial []ESpeakVoice
	for _, v := range voices {
		vl := strings.ToLower(v.Language)
		switch {
		case vl == lang:
			exact = append(exact, v)
		case lang != "" && (strings.Contains(vl, lang) ||
			strings.Contains(strings.ToLower(v.Name), lang) ||
			strings.Contains(strings.ToLower(v.File), lang)):
			partial = append(partial, v)
		}
	}

	candidates := exact
	if len(candidates) == 0 {
		candidates = partial
	}
	if len(candidates) == 0 {
		return voices[0]
	}

	if want := styleGender(style); want != "" {
		for _, v := range candidates {
			if v.Gender == want {
				return v
			}
		}
	}
	return candidates[0]
}

func styleGender(style models.VoiceStyle) string {
	switch style {
	case models.VoiceStyleMan:
		return "M"
	case models.VoiceStyleWoman:
		return "F"
	}
	return ""
}

// styleVariant returns the espeak voice variant suffix for man/woman.
func styleVariant(style models.VoiceStyle) string {
	switch style {
	case models.VoiceStyleMan:
		return "+m3"
	case models.VoiceStyleWoman:
		return "+f3"
	}
	return ""
}
