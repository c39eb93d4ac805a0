package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vox/internal/session"
)

func TestGateway_ReadsLinesAndPrints(t *testing.T) {
	var out bytes.Buffer
	eof := make(chan struct{})

	g := New(Options{
		In:    strings.NewReader("hey assistant\n  search for cats  \n"),
		Out:   &out,
		OnEOF: func() { close(eof) },
	})
	ctx := context.Background()

	assert.Equal(t, "hey assistant", g.Listen(ctx, session.ListenOptions{}))
	assert.Equal(t, "search for cats", g.Listen(ctx, session.ListenOptions{}))
	assert.Equal(t, "", g.Listen(ctx, session.ListenOptions{}))

	select {
	case <-eof:
	case <-time.After(time.Second):
		t.Fatal("OnEOF not called")
	}

	g.Speak(ctx, "Hello.")
	assert.Equal(t, "> > > Assistant: Hello.\n", out.String())
}

func TestGateway_ListenHonoursContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	g := New(Options{In: r, Out: io.Discard})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Equal(t, "", g.Listen(ctx, session.ListenOptions{}))
}

type trackingReader struct {
	r        io.Reader
	inFlight atomic.Int32
}

func (t *trackingReader) Read(p []byte) (int, error) {
	t.inFlight.Add(1)
	defer t.inFlight.Add(-1)
	return t.r.Read(p)
}

func TestGateway_SecretReadOwnsInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	in := &trackingReader{r: pr}

	readersDuringSecret := int32(-1)
	g := New(Options{
		In:  in,
		Out: io.Discard,
		Secret: func() (string, error) {
			readersDuringSecret = in.inFlight.Load()
			return "hunter2", nil
		},
	})
	require.True(t, g.HasSecrets())
	ctx := context.Background()

	go pw.Write([]byte("yes\n"))
	assert.Equal(t, "yes", g.Listen(ctx, session.ListenOptions{}))

	secret, ok := g.ReadSecret(ctx, "Please enter the admin password.")
	require.True(t, ok)
	assert.Equal(t, "hunter2", secret)
	assert.Equal(t, int32(0), readersDuringSecret, "line reader must be idle while the secret is read")

	go pw.Write([]byte("volume up\n"))
	assert.Equal(t, "volume up", g.Listen(ctx, session.ListenOptions{}))
}

func TestGateway_ReadSecretWhileLineOutstanding(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	called := false
	g := New(Options{
		In:     pr,
		Out:    io.Discard,
		Secret: func() (string, error) { called = true; return "x", nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Empty(t, g.Listen(ctx, session.ListenOptions{}))

	_, ok := g.ReadSecret(context.Background(), "Password")
	assert.False(t, ok)
	assert.False(t, called)

	go pw.Write([]byte("late line\n"))
	assert.Equal(t, "late line", g.Listen(context.Background(), session.ListenOptions{}))
}

func TestGateway_NoHiddenEntry(t *testing.T) {
	g := New(Options{In: strings.NewReader(""), Out: io.Discard})
	require.False(t, g.HasSecrets())

	_, ok := g.ReadSecret(context.Background(), "Password")
	assert.False(t, ok)
}

func TestTerminalSecret_NotATerminal(t *testing.T) {
	assert.Nil(t, TerminalSecret(-1))
}
