package services

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth    = 16
	wavPCMFormat   = 1
	wavMonoChannel = 1
)

// EncodeWAV wraps mono 16-bit samples in a RIFF/WAVE container. The encoder needs
// a seekable writer to patch chunk sizes, so it goes through a scratch file that
// is removed before returning.
func EncodeWAV(samples []int, sampleRate int, scratchDir string) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	tmp, err := os.CreateTemp(scratchDir, "voicegate-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create wav scratch file: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[WAV] failed to remove scratch file %s: %v", tmp.Name(), rmErr)
		}
	}()

	enc := wav.NewEncoder(tmp, sampleRate, wavBitDepth, wavMonoChannel, wavPCMFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavMonoChannel, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close wav scratch file: %w", err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read encoded wav: %w", err)
	}
	return data, nil
}

// FloatsToPCM16 scales a [-1, 1] waveform to 16-bit integers, clipping outliers.
func FloatsToPCM16(wave []float64) []int {
	out := make([]int, len(wave))
	for i, v := range wave {
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		out[i] = int(v * 32767)
	}
	return out
}

// PCM16LEToSamples reads little-endian signed 16-bit PCM. A trailing odd byte is ignored.
func PCM16LEToSamples(raw []byte) []int {
	out := make([]int, len(raw)/2)
	for i := range out {
		out[i] = int(int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8))
	}
	return out
}
