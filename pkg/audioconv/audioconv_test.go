package audioconv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes frames of interleaved 16-bit samples.
func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

func TestDecodeFile_WAVStereo32k(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd.wav")

	// one second of stereo: left at +half scale, right silent
	data := make([]int, 32000*2)
	for i := 0; i < len(data); i += 2 {
		data[i] = 16384
	}
	writeWAV(t, path, 32000, 2, data)

	pcm, err := DecodeFile(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Len(t, pcm, TargetRate)
	assert.InDelta(t, 0.25, pcm[100], 0.001)
}

func TestDecode_SniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utterance.bin")
	writeWAV(t, path, TargetRate, 1, make([]int, 800))

	pcm, err := DecodeFile(context.Background(), path, Options{MaxSamples: 500})
	require.NoError(t, err)
	assert.Len(t, pcm, 500)
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("plain text, not audio")), ".txt", Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDecode_BrokenOggReportsBothDecoders(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("OggS garbage garbage garbage")), ".ogg", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ogg")
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := DecodeFile(context.Background(), filepath.Join(t.TempDir(), "none.wav"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DecodeFile(ctx, "whatever.wav", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0}, downmix([]float32{1, 0, 0.5, -0.5}, 2))
	assert.Equal(t, []float32{1, 2}, downmix([]float32{1, 2}, 1))
}

func TestResampleLinear(t *testing.T) {
	in := []float32{0, 1, 2, 3}

	assert.Equal(t, in, resampleLinear(in, 16000, 16000))
	assert.Equal(t, []float32{0, 2}, resampleLinear(in, 32000, 16000))

	up := resampleLinear([]float32{0, 1}, 8000, 16000)
	assert.Equal(t, []float32{0, 0.5, 1, 1}, up)
}

func TestIntsToFloat32(t *testing.T) {
	got := intsToFloat32([]int{32767, -32768, 0, 16384}, 16)
	assert.InDelta(t, 1.0, got[0], 0.0001)
	assert.Equal(t, float32(-1), got[1])
	assert.Equal(t, float32(0), got[2])
	assert.Equal(t, float32(0.5), got[3])
}
