package nats

import (
	"time"

	"github.com/nats-io/nats.go"
)

const defaultURL = "nats://localhost:4222"

type Nats struct {
	Url   string
	Token string
	Conn  *nats.Conn
}

// Connect dials url, falling back to the local default. The token is
// optional.
func Connect(name, url, token string) (*Nats, error) {
	n := &Nats{Url: url, Token: token}
	if n.Url == "" {
		n.Url = defaultURL
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	if n.Token != "" {
		opts = append(opts, nats.Token(n.Token))
	}

	conn, err := nats.Connect(n.Url, opts...)
	if err != nil {
		return nil, err
	}
	n.Conn = conn

	return n, nil
}

func (n *Nats) Close() {
	if n == nil || n.Conn == nil {
		return
	}
	_ = n.Conn.Drain()
}
