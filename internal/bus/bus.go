// Package bus exposes the assistant on a websocket message bus: utterances
// arrive as text messages addressed to the shard, replies go back to the
// last sender.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"vox/internal/session"
)

const (
	KindUtterance = "utterance"
	KindReply     = "reply"

	Broadcast = "ALL"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type Config struct {
	URL   string
	Shard string
	// Reconn is the pause between reconnect attempts.
	Reconn time.Duration
	Log    *log.Logger
}

// Gateway implements session.Gateway over the bus.
type Gateway struct {
	cfg Config
	log *log.Logger

	connMu sync.Mutex
	conn   *ws.Conn

	peerMu sync.Mutex
	peer   string

	inbox chan Message
}

func Dial(ctx context.Context, cfg Config) (*Gateway, error) {
	if cfg.Shard == "" {
		cfg.Shard = "vox"
	}
	if cfg.Reconn <= 0 {
		cfg.Reconn = time.Second
	}
	if cfg.Log == nil {
		cfg.Log = log.Default()
	}

	g := &Gateway{
		cfg:   cfg,
		log:   cfg.Log.With("component", "bus", "shard", cfg.Shard),
		inbox: make(chan Message, 16),
	}

	conn, _, err := ws.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("bus: dial %s: %w", cfg.URL, err)
	}
	g.conn = conn

	g.log.Info("Connected to bus", "url", cfg.URL)
	return g, nil
}

// Run reads the bus until ctx is done, reconnecting when the peer closes.
func (g *Gateway) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		g.current().Close()
	}()

	for ctx.Err() == nil {
		_, data, err := g.current().ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			g.log.Warn("Bus read failed, reconnecting", "err", err)
			g.reconnect(ctx)
			continue
		}

		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			g.log.Warn("Failed to parse", "msg", string(data), "err", err)
			continue
		}
		if !g.accepts(m) {
			continue
		}

		select {
		case g.inbox <- m:
		default:
			g.log.Warn("Inbox full, dropping utterance", "from", m.From)
		}
	}
}

func (g *Gateway) accepts(m Message) bool {
	return m.Kind == KindUtterance && (m.To == g.cfg.Shard || m.To == Broadcast)
}

func (g *Gateway) reconnect(ctx context.Context) {
	for {
		conn, _, err := ws.DefaultDialer.DialContext(ctx, g.cfg.URL, nil)
		if err == nil {
			g.connMu.Lock()
			g.conn.Close()
			g.conn = conn
			g.connMu.Unlock()
			g.log.Info("Reconnected", "url", g.cfg.URL)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(g.cfg.Reconn):
		}
	}
}

func (g *Gateway) current() *ws.Conn {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	return g.conn
}

// Listen waits for the next utterance. Timeout and PhraseLimit together
// bound the wait; zero waits until ctx is done.
func (g *Gateway) Listen(ctx context.Context, opt session.ListenOptions) string {
	var deadline <-chan time.Time
	if d := opt.Timeout + opt.PhraseLimit; d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case m := <-g.inbox:
		g.peerMu.Lock()
		g.peer = m.From
		g.peerMu.Unlock()
		return strings.TrimSpace(m.Content)
	case <-deadline:
		return ""
	case <-ctx.Done():
		return ""
	}
}

func (g *Gateway) Speak(_ context.Context, text string) {
	g.peerMu.Lock()
	to := g.peer
	g.peerMu.Unlock()
	if to == "" {
		to = Broadcast
	}

	if err := g.Send(Message{To: to, Kind: KindReply, Content: text}); err != nil {
		g.log.Error("Failed to send reply", "to", to, "err", err)
	}
}

func (g *Gateway) Send(m Message) error {
	m.From = g.cfg.Shard

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	g.connMu.Lock()
	defer g.connMu.Unlock()
	if g.conn == nil {
		return errors.New("bus: not connected")
	}
	return g.conn.WriteMessage(ws.TextMessage, data)
}

func (g *Gateway) Close() error {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	return g.conn.Close()
}
