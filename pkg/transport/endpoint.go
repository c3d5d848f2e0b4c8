package transport

import (
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// Largest datagram the endpoint accepts. A classic DATA message is at
// most 4 + 512 bytes, the tagged-union framing stays well below this.
const maxDatagramSize = 1024

// Endpoint is one side of a transfer : a UDP socket bound to an
// ephemeral local port (the client transfer id) plus the current peer
// address. The peer port starts as the well-known service port and is
// replaced by the server transfer id when the first reply arrives.
// After that latch, datagrams from any other source are rejected.
type Endpoint struct {
	conn       *net.UDPConn
	peer       *net.UDPAddr
	tidLearned bool
}

// Bind a fresh ephemeral socket talking to server:port
func NewEndpoint(server net.IP, port uint16) (*Endpoint, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, err
	}
	return &Endpoint{
		conn: conn,
		peer: &net.UDPAddr{IP: server, Port: int(port)},
	}, nil
}

// Wait for the next stimulus : an accepted datagram, a timeout, or a
// rejected datagram. Exactly one outcome is reported per call.
// A timeout of 0 disables the timer branch and blocks on the socket.
func (e *Endpoint) Wait(timeout time.Duration) Event {
	if timeout > 0 {
		_ = e.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = e.conn.SetReadDeadline(time.Time{})
	}
	buffer := make([]byte, maxDatagramSize)
	n, addr, err := e.conn.ReadFromUDP(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return Event{Type: EventTimeout}
		}
		log.Warnf("[ENDPOINT][RX] receive failed : %v", err)
		return Event{Type: EventNothing}
	}

	if !e.tidLearned {
		if !addr.IP.Equal(e.peer.IP) {
			log.Warnf("[ENDPOINT][RX] dropping datagram from unexpected host %v", addr)
			return Event{Type: EventNothing}
		}
		// First reply : adopt the server transfer id
		e.peer.Port = addr.Port
		e.tidLearned = true
		log.Debugf("[ENDPOINT][RX] learned peer transfer id %v", addr.Port)
		return Event{Type: EventMessage, Data: buffer[:n]}
	}

	if !addr.IP.Equal(e.peer.IP) || addr.Port != e.peer.Port {
		log.Warnf("[ENDPOINT][RX] dropping datagram from unexpected transfer id %v", addr)
		return Event{Type: EventNothing}
	}
	return Event{Type: EventMessage, Data: buffer[:n]}
}

// Send one datagram to the current peer
func (e *Endpoint) Send(payload []byte) error {
	_, err := e.conn.WriteToUDP(payload, e.peer)
	return err
}

// Release the socket
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

// Local address of the bound socket, the client transfer id
func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Current peer address. Frozen once the transfer id is learned.
func (e *Endpoint) Peer() *net.UDPAddr {
	peer := *e.peer
	return &peer
}

func (e *Endpoint) TIDLearned() bool {
	return e.tidLearned
}
