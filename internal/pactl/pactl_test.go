package pactl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sinkInputsOutput = `Sink Input #42
	Driver: protocol-native.c
	Volume: front-left: 39322 /  60% / -13.31 dB,   front-right: 39322 /  60% / -13.31 dB
	Properties:
		application.name = "Firefox"
Sink Input #43
	Volume: front-left: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "vox"
Sink Input #bogus
	Volume: front-left: 65536 / 100% / 0.00 dB
`

type recorder struct {
	calls [][]string
	out   []byte
	err   error
}

func (r *recorder) run(_ context.Context, args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	return r.out, r.err
}

func TestSinkInputs_Parses(t *testing.T) {
	r := &recorder{out: []byte(sinkInputsOutput)}
	c := NewWithRunner(r.run)

	got, err := c.SinkInputs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []SinkInput{
		{ID: 42, Volume: 60, AppName: "Firefox"},
		{ID: 43, Volume: 100, AppName: "vox"},
	}, got)
	assert.Equal(t, []string{"list", "sink-inputs"}, r.calls[0])
}

func TestChangeSinkVolume_SignedDelta(t *testing.T) {
	r := &recorder{}
	c := NewWithRunner(r.run)
	ctx := context.Background()

	require.NoError(t, c.ChangeSinkVolume(ctx, 10))
	require.NoError(t, c.ChangeSinkVolume(ctx, -25))

	assert.Equal(t, []string{"set-sink-volume", DefaultSink, "+10%"}, r.calls[0])
	assert.Equal(t, []string{"set-sink-volume", DefaultSink, "-25%"}, r.calls[1])
}

func TestSetSinkInputVolume_Clamps(t *testing.T) {
	r := &recorder{}
	c := NewWithRunner(r.run)

	require.NoError(t, c.SetSinkInputVolume(context.Background(), 7, 400))

	assert.Equal(t, []string{"set-sink-input-volume", "7", "150%"}, r.calls[0])
}

func TestSinkVolume(t *testing.T) {
	r := &recorder{out: []byte("Volume: front-left: 32768 /  50% / -18.06 dB\n")}
	c := NewWithRunner(r.run)

	v, err := c.SinkVolume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, v)
}

func TestRunnerErrorPropagates(t *testing.T) {
	r := &recorder{err: errors.New("no pulse")}
	c := NewWithRunner(r.run)

	assert.Error(t, c.ToggleSinkMute(context.Background()))
}
