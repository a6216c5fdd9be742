package natsx

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Setenv("NATS_URL", "")
	nc, err := NewClient("", nats.Name("conduit-test"), nats.MaxReconnects(0))
	if err != nil {
		t.Skipf("no nats server at %s: %v", nats.DefaultURL, err)
	}
	defer nc.Close()
	require.True(t, nc.IsConnected())
	assert.Equal(t, "conduit-test", nc.Opts.Name)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient("nats://127.0.0.1:1", nats.MaxReconnects(0), nats.Timeout(100_000_000))
	require.Error(t, err)
}
