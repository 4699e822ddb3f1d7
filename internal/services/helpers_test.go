package services

import (
	"bytes"
	"math"
	"os"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

func sineWave(freq float64, rate int, dur time.Duration) []float64 {
	n := int(float64(rate) * dur.Seconds())
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func wavDuration(t *testing.T, data []byte) time.Duration {
	t.Helper()
	d := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, d.IsValidFile(), "not a valid WAV file")
	dur, err := d.Duration()
	require.NoError(t, err)
	return dur
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "scratch files left behind")
}
