package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobarin/voicegate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gttsCall struct {
	Text  string
	Lang  string
	Speed any
}

// fakeGTTS answers batchexecute calls with "MP3:<text>" as the audio payload.
func fakeGTTS(t *testing.T) (*httptest.Server, *[]gttsCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []gttsCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, gttsRPCPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		var rpc [][][]any
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("f.req")), &rpc))
		assert.Equal(t, gttsRPCID, rpc[0][0][0])

		var param []any
		require.NoError(t, json.Unmarshal([]byte(rpc[0][0][1].(string)), &param))
		call := gttsCall{Text: param[0].(string), Lang: param[1].(string), Speed: param[2]}

		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()

		if call.Lang == "sw" {
			fmt.Fprint(w, ")]}'\n\n[[\"wrb.fr\",\"jQ1olc\",null,null,null,[3],\"generic\"]]\n")
			return
		}

		b64 := base64.StdEncoding.EncodeToString([]byte("MP3:" + call.Text))
		fmt.Fprint(w, ")]}'\n\n")
		fmt.Fprintln(w, `[["wrb.fr","jQ1olc","[\"`+b64+`\"]",null,null,null,"generic"]]`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGTTSGenerateSpeech(t *testing.T) {
	t.Parallel()

	srv, calls := fakeGTTS(t)
	svc := NewGTTSService(srv.URL, "pt", 5*time.Second)

	resp, err := svc.GenerateSpeech(context.Background(), SynthesisRequest{Text: "Olá,  mundo. ", Language: "pt"})
	require.NoError(t, err)

	assert.Equal(t, MIMETypeMPEG, resp.MIMEType)
	assert.Equal(t, "MP3:Olá,  mundo.", string(resp.AudioData))
	require.Len(t, *calls, 1)
	assert.Equal(t, "pt", (*calls)[0].Lang)
	assert.Nil(t, (*calls)[0].Speed)
}

func TestGTTSSlowAndChunked(t *testing.T) {
	t.Parallel()

	srv, calls := fakeGTTS(t)
	svc := NewGTTSService(srv.URL, "pt", 5*time.Second)

	text := strings.Repeat("a", 80) + ". " + strings.Repeat("b", 80)
	resp, err := svc.GenerateSpeech(context.Background(), SynthesisRequest{Text: text, Language: "zh-cn", Style: models.VoiceStyleSlow})
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	for _, c := range *calls {
		assert.Equal(t, true, c.Speed)
		assert.Equal(t, "zh-CN", c.Lang)
	}
	assert.Equal(t, "MP3:"+strings.Repeat("a", 80)+".MP3:"+strings.Repeat("b", 80), string(resp.AudioData))
}

func TestGTTSNoAudioInResponse(t *testing.T) {
	t.Parallel()

	srv, _ := fakeGTTS(t)
	svc := NewGTTSService(srv.URL, "pt", 5*time.Second)

	_, err := svc.GenerateSpeech(context.Background(), SynthesisRequest{Text: "jambo", Language: "sw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio stream")
}

func TestGTTSUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, err := NewGTTSService(srv.URL, "pt", 5*time.Second).
		GenerateSpeech(context.Background(), SynthesisRequest{Text: "oi", Language: "pt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGTTSValidateLanguage(t *testing.T) {
	t.Parallel()

	svc := NewGTTSService("http://unused", "pt", time.Second)
	assert.NoError(t, svc.ValidateLanguage("pt"))
	assert.NoError(t, svc.ValidateLanguage("zh-TW"))
	assert.ErrorIs(t, svc.ValidateLanguage("xx-invalid"), ErrInvalidInput)
	assert.ErrorIs(t, svc.ValidateLanguage("klingon"), ErrInvalidInput)

	info := svc.Describe()
	assert.Equal(t, "gtts", info.Name)
	assert.False(t, info.SupportsStyle(models.VoiceStyleMan))
	assert.Contains(t, info.Languages, "pt")
}
