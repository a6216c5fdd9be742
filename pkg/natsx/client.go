package natsx

import (
	"cmp"
	"os"

	"github.com/nats-io/nats.go"
)

// NewClient connects to url, falling back to the NATS_URL environment variable
// and then to nats.DefaultURL. Without options the connection is named
// "conduit" and uses compression.
func NewClient(url string, opts ...nats.Option) (*nats.Conn, error) {
	if len(opts) == 0 {
		opts = append(opts, nats.Name("conduit"), nats.Compression(true))
	}
	return nats.Connect(cmp.Or(url, os.Getenv("NATS_URL"), nats.DefaultURL), opts...)
}
