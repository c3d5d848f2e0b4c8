// Client facade over transfer sessions. One fresh session (fresh
// ephemeral socket) is created per operation and consumed by it, the
// facade itself is stateless across transfers and never retries a
// whole session.
package client

import (
	"net"
	"time"

	tftp "github.com/samsamfire/gotftp"
	"github.com/samsamfire/gotftp/pkg/message"
	"github.com/samsamfire/gotftp/pkg/session"
	log "github.com/sirupsen/logrus"
)

type Client struct {
	server     net.IP
	port       uint16
	timeout    time.Duration
	maxRetries uint16
	codec      message.Codec
}

// Create a client for the server at the given dotted-quad IPv4 literal
// and service port. Defaults : 5s timeout, 3 retries, classic codec.
func NewClient(server string, port uint16) (*Client, error) {
	ip := net.ParseIP(server)
	if ip == nil || ip.To4() == nil {
		return nil, tftp.ErrInvalidAddress
	}
	return &Client{
		server:     ip.To4(),
		port:       port,
		timeout:    session.DefaultTimeout,
		maxRetries: session.DefaultMaxRetries,
		codec:      message.NewClassicCodec(),
	}, nil
}

// Set the per-wait timeout used by sessions. 0 waits forever.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Set the retransmission budget of a single outstanding message
func (c *Client) SetMaxRetries(maxRetries uint16) {
	c.maxRetries = maxRetries
}

// Set the wire codec. Both sides of a transfer must agree on it.
func (c *Client) SetCodec(codec message.Codec) {
	c.codec = codec
}

// Upload sends data to the remote file remoteName
func (c *Client) Upload(data []byte, remoteName string) tftp.Status {
	sess, err := session.NewSession(c.server, c.port, c.timeout, c.maxRetries, c.codec)
	if err != nil {
		log.Errorf("[CLIENT] could not create session : %v", err)
		return tftp.Status{Code: tftp.StatusUnknown}
	}
	return sess.Send(remoteName, data)
}

// Download fetches the remote file remoteName. The returned bytes are
// only meaningful when the status is StatusOK.
func (c *Client) Download(remoteName string) (tftp.Status, []byte) {
	sess, err := session.NewSession(c.server, c.port, c.timeout, c.maxRetries, c.codec)
	if err != nil {
		log.Errorf("[CLIENT] could not create session : %v", err)
		return tftp.Status{Code: tftp.StatusUnknown}, nil
	}
	return sess.Receive(remoteName)
}
