// Package ipc is the local control channel of vox-daemon: one JSON message
// per connection over a unix socket.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	log "log/slog"
)

const DefaultSocketPath = "/tmp/vox.sock"

const (
	CmdTrigger = "trigger" // wake the assistant without the wake word
	CmdStop    = "stop"    // shut the daemon down
	CmdAbort   = "abort"   // cancel a scheduled shutdown or restart
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler executes one command. A returned error is relayed to the client.
type Handler func(ctx context.Context, msg ControlMessage) error

type Server struct {
	path string
	ln   net.Listener
	log  *log.Logger
	done chan struct{}
	once sync.Once
	err  error
}

// StartServer listens on path, replacing a stale socket, and serves until
// ctx is cancelled or Close is called.
func StartServer(ctx context.Context, path string, handler Handler, logger *log.Logger) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	if logger == nil {
		logger = log.Default()
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ipc: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen: %w", err)
	}

	s := &Server{
		path: path,
		ln:   ln,
		log:  logger.With("component", "ipc"),
		done: make(chan struct{}),
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	go s.serve(ctx, handler)

	return s, nil
}

func (s *Server) serve(ctx context.Context, handler Handler) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("Accept failed", "err", err)
			continue
		}
		go s.handleConn(ctx, conn, handler)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		s.log.Warn("Bad control message", "err", err)
		json.NewEncoder(conn).Encode(Reply{Error: "malformed message"})
		return
	}

	s.log.Debug("Control message", "cmd", msg.Cmd)

	reply := Reply{OK: true}
	if err := handler(ctx, msg); err != nil {
		reply = Reply{Error: err.Error()}
	}
	json.NewEncoder(conn).Encode(reply)
}

func (s *Server) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.ln.Close()
		os.Remove(s.path)
	})
	return s.err
}

// SendCommand delivers cmd to the daemon at path and waits for its reply.
func SendCommand(path, cmd string) error {
	if path == "" {
		path = DefaultSocketPath
	}

	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return fmt.Errorf("ipc: send: %w", err)
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return fmt.Errorf("ipc: read reply: %w", err)
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}
	return nil
}
