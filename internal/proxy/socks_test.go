package proxy

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSocksClient_Direct(t *testing.T) {
	c, err := NewSocksClient("", 0)
	require.NoError(t, err)
	assert.Nil(t, c.Transport)
	assert.Equal(t, 120*time.Second, c.Timeout)
}

func TestNewSocksClient_Proxied(t *testing.T) {
	c, err := NewSocksClient("127.0.0.1:1080", time.Second)
	require.NoError(t, err)
	assert.NotNil(t, c.Transport)
	assert.Equal(t, time.Second, c.Timeout)
}

type plainDialer struct{ addr string }

func (p *plainDialer) Dial(_, addr string) (net.Conn, error) {
	p.addr = addr
	return nil, errors.New("refused")
}

func TestDialContext_FallsBackToDial(t *testing.T) {
	d := &plainDialer{}
	_, err := dialContext(d)(context.Background(), "tcp", "api.openai.com:443")
	require.Error(t, err)
	assert.Equal(t, "api.openai.com:443", d.addr)
}
