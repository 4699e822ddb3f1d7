package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data, err := EncodeWAV(FloatsToPCM16(sineWave(440, 22050, time.Second)), 22050, dir)
	require.NoError(t, err)

	assert.Equal(t, "RIFF", string(data[:4]))
	assert.InDelta(t, time.Second.Seconds(), wavDuration(t, data).Seconds(), 0.01)
	requireEmptyDir(t, dir)
}

func TestEncodeWAVRejectsBadRate(t *testing.T) {
	t.Parallel()

	_, err := EncodeWAV([]int{1, 2, 3}, 0, t.TempDir())
	require.Error(t, err)
}

func TestFloatsToPCM16Clips(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{32767, -32767, 0, 16383}, FloatsToPCM16([]float64{2, -3, 0, 0.5}))
}

func TestPCM16LEToSamples(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, -1, 256}, PCM16LEToSamples([]byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x01, 0x7f}))
}
