package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/bobarin/voicegate/internal/models"
	"github.com/bobarin/voicegate/internal/services"
)

const referenceField = "voice_to_be_cloned"

// HandlerConfig holds the request-level limits and defaults.
type HandlerConfig struct {
	MaxLanguageLength int
	MaxUploadBytes    int64
	DefaultEncoding   models.ResponseEncoding
	Secrets           []string // masked out of error messages
}

type Handler struct {
	synth *services.Synthesizer
	cfg   HandlerConfig
}

func NewHandler(synth *services.Synthesizer, cfg HandlerConfig) *Handler {
	if cfg.DefaultEncoding == "" {
		cfg.DefaultEncoding = models.ResponseEncodingBinary
	}
	return &Handler{synth: synth, cfg: cfg}
}

// GenerateAudio handles POST /generate_audio/
// Parameters may come from the query string, a urlencoded form or a multipart
// form; the reference sample is only accepted as a multipart file.
func (h *Handler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	id := SynthesisIDFrom(r.Context())

	if err := h.parseForm(r); err != nil {
		h.respondErr(w, r, err)
		return
	}

	req, err := h.buildRequest(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	encoding, err := h.responseEncoding(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	entry := models.SynthesisLog{
		ID:       id,
		Backend:  h.synth.Backend().Name,
		Language: req.Language,
		Voice:    req.Style,
		TextLen:  len(req.Text),
	}

	start := time.Now()
	resp, err := h.synth.Generate(r.Context(), req)
	if err != nil {
		log.Printf("[API] synthesis failed %s: %v", entry, redact(err.Error(), h.cfg.Secrets))
		h.respondErr(w, r, err)
		return
	}

	log.Printf("[API] synthesized %s bytes=%d encoding=%s took=%s", entry, len(resp.AudioData), encoding, time.Since(start).Round(time.Millisecond))

	if encoding == models.ResponseEncodingBase64 {
		respondJSON(w, http.StatusOK, models.GenerateAudioResponse{
			AudioBase64: base64.StdEncoding.EncodeToString(resp.AudioData),
		})
		return
	}

	w.Header().Set("Content-Type", resp.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="speech.%s"`, resp.Format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.AudioData); err != nil {
		log.Printf("[API] failed to write audio %s: %v", entry, err)
	}
}

func (h *Handler) parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(h.cfg.MaxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &services.InputError{Field: "body", Reason: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
	}
	return &services.InputError{Field: "body", Reason: "malformed form: " + err.Error()}
}

func (h *Handler) buildRequest(r *http.Request) (services.SynthesisRequest, error) {
	language := strings.TrimSpace(r.FormValue("language"))
	if h.cfg.MaxLanguageLength > 0 && len(language) > h.cfg.MaxLanguageLength {
		return services.SynthesisRequest{}, &services.InputError{
			Field:  "language",
			Reason: fmt.Sprintf("unsupported language %q (codes are at most %d characters)", language, h.cfg.MaxLanguageLength),
		}
	}

	style, err := models.ParseVoiceStyle(r.FormValue("voice"))
	if err != nil {
		return services.SynthesisRequest{}, &services.InputError{Field: "voice", Reason: err.Error()}
	}

	reference, err := readReference(r)
	if err != nil {
		return services.SynthesisRequest{}, err
	}

	return services.SynthesisRequest{
		Text:           r.FormValue("text"),
		Language:       language,
		Style:          style,
		ReferenceAudio: reference,
	}, nil
}

// readReference returns the uploaded reference sample, or nil when none was sent.
func readReference(r *http.Request) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, _, err := r.FormFile(referenceField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &services.InputError{Field: referenceField, Reason: "unreadable upload: " + err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", referenceField, err)
	}
	if len(data) == 0 {
		return nil, &services.InputError{Field: referenceField, Reason: "uploaded reference sample is empty"}
	}
	return data, nil
}

// responseEncoding picks base64 or binary: explicit response_format first,
// then an Accept header asking for JSON, then the configured default.
func (h *Handler) responseEncoding(r *http.Request) (models.ResponseEncoding, error) {
	if raw := r.FormValue("response_format"); raw != "" {
		enc, ok := models.ParseResponseEncoding(raw)
		if !ok {
			return "", &services.InputError{Field: "response_format", Reason: fmt.Sprintf("unknown response_format %q (use binary or base64)", raw)}
		}
		return enc, nil
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mt, _, err := mime.ParseMediaType(strings.TrimSpace(part)); err == nil && mt == "application/json" {
			return models.ResponseEncodingBase64, nil
		}
	}
	return h.cfg.DefaultEncoding, nil
}

// Backend handles GET /backend
func (h *Handler) Backend(w http.ResponseWriter, r *http.Request) {
	info := h.synth.Backend()
	respondJSON(w, http.StatusOK, models.BackendResponse{
		Name:              info.Name,
		DefaultLanguage:   info.DefaultLanguage,
		Languages:         info.Languages,
		Voices:            info.Styles,
		RequiresReference: info.RequiresReference,
		MaxLanguageLength: h.cfg.MaxLanguageLength,
	})
}

// Index serves the test page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Backend: h.synth.Backend().Name,
		Time:    time.Now().UTC(),
	})
}
