package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socket(t *testing.T) string {
	t.Helper()
	// unix socket paths are short; t.TempDir can exceed the limit
	dir, err := os.MkdirTemp("", "vox")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s")
}

func TestSendCommand_RoundTrip(t *testing.T) {
	path := socket(t)
	got := make(chan string, 1)

	s, err := StartServer(context.Background(), path, func(_ context.Context, msg ControlMessage) error {
		got <- msg.Cmd
		return nil
	}, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, SendCommand(path, CmdTrigger))
	assert.Equal(t, CmdTrigger, <-got)
}

func TestSendCommand_HandlerError(t *testing.T) {
	path := socket(t)

	s, err := StartServer(context.Background(), path, func(context.Context, ControlMessage) error {
		return errors.New("nothing scheduled")
	}, nil)
	require.NoError(t, err)
	defer s.Close()

	err = SendCommand(path, CmdAbort)
	require.Error(t, err)
	assert.Equal(t, "nothing scheduled", err.Error())
}

func TestStartServer_ReplacesStaleSocket(t *testing.T) {
	path := socket(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s, err := StartServer(context.Background(), path, func(context.Context, ControlMessage) error { return nil }, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, SendCommand(path, CmdStop))
}

func TestServer_StopsOnCancel(t *testing.T) {
	path := socket(t)
	ctx, cancel := context.WithCancel(context.Background())

	s, err := StartServer(ctx, path, func(context.Context, ControlMessage) error { return nil }, nil)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		_, err := net.Dial("unix", path)
		return err != nil
	}, time.Second, 10*time.Millisecond)
	assert.NoError(t, s.Close())
}

func TestSendCommand_NoDaemon(t *testing.T) {
	assert.Error(t, SendCommand(socket(t), CmdTrigger))
}
