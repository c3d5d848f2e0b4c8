package session

import (
	"net"
	"time"

	tftp "github.com/samsamfire/gotftp"
	"github.com/samsamfire/gotftp/internal/fifo"
	"github.com/samsamfire/gotftp/pkg/message"
	"github.com/samsamfire/gotftp/pkg/transport"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 3
)

// Block numbers are 16 bit and do not wrap : advancing past this value
// aborts the session
const blockNumberMax = 65535

type state uint8

const (
	stateIdle     state = 0
	stateRx       state = 1
	stateInitTx   state = 2
	stateTx       state = 3
	stateFinishTx state = 4
	stateFinish   state = 5
)

// A Session runs a single file transfer to completion. It owns the
// socket, the transfer buffer and the state machine, and is consumed
// by the transfer : create a new one per operation.
// When receiving, file contents accumulate in the buffer.
// When sending, contents are stored in the buffer up front and chunks
// are dropped from it as they are acknowledged.
type Session struct {
	endpoint   transportLayer
	codec      message.Codec
	buffer     *fifo.Fifo
	seqno      uint32
	retries    uint16
	maxRetries uint16
	timeout    time.Duration
	state      state
	status     tftp.Status
}

// The slice of the endpoint the state machine drives. Satisfied by
// *transport.Endpoint.
type transportLayer interface {
	Wait(timeout time.Duration) transport.Event
	Send(payload []byte) error
	Close() error
}

// Create a session talking to server:port with a fresh ephemeral socket
func NewSession(server net.IP, port uint16, timeout time.Duration, maxRetries uint16, codec message.Codec) (*Session, error) {
	if codec == nil {
		return nil, tftp.ErrIllegalArgument
	}
	endpoint, err := transport.NewEndpoint(server, port)
	if err != nil {
		return nil, err
	}
	return &Session{
		endpoint:   endpoint,
		codec:      codec,
		buffer:     fifo.NewFifo(),
		seqno:      1,
		maxRetries: maxRetries,
		timeout:    timeout,
		state:      stateIdle,
	}, nil
}

// Terminal status. Meaningful once the transfer returned.
func (s *Session) Status() tftp.Status {
	return s.status
}

// Accumulated transfer buffer, the downloaded contents after Receive
func (s *Session) Buffer() []byte {
	return s.buffer.Bytes()
}

// Release the session socket without running a transfer
func (s *Session) Close() error {
	return s.endpoint.Close()
}

// Send transmits data under the remote name filename and runs the
// state machine to completion. The socket is released on return.
func (s *Session) Send(filename string, data []byte) tftp.Status {
	if s.state != stateIdle {
		log.Errorf("[SESSION] %v", tftp.ErrSessionInUse)
		return tftp.Status{Code: tftp.StatusUnknown}
	}
	defer s.endpoint.Close()

	log.Debugf("[SESSION][TX] WRQ %q | %v bytes to send", filename, len(data))
	if err := s.sendMessage(message.NewWRQ(filename)); err != nil {
		log.Errorf("[SESSION][TX] WRQ failed : %v", err)
		s.finish(tftp.StatusUnknown)
		return s.status
	}
	s.buffer.Write(data)
	s.state = stateInitTx
	s.run()
	return s.status
}

// Receive downloads the remote file filename and runs the state
// machine to completion. On StatusOK the contents are in Buffer().
// The socket is released on return.
func (s *Session) Receive(filename string) (tftp.Status, []byte) {
	if s.state != stateIdle {
		log.Errorf("[SESSION] %v", tftp.ErrSessionInUse)
		return tftp.Status{Code: tftp.StatusUnknown}, nil
	}
	defer s.endpoint.Close()

	log.Debugf("[SESSION][TX] RRQ %q", filename)
	if err := s.sendMessage(message.NewRRQ(filename)); err != nil {
		log.Errorf("[SESSION][TX] RRQ failed : %v", err)
		s.finish(tftp.StatusUnknown)
		return s.status, nil
	}
	s.state = stateRx
	s.run()
	return s.status, s.buffer.Bytes()
}

// Alternate between waiting for a stimulus and the state handler until
// the machine reaches its terminal state
func (s *Session) run() {
	for s.state != stateFinish {
		ev := s.nextEvent()
		switch s.state {
		case stateRx:
			s.handleRx(ev)
		case stateInitTx:
			s.handleInitTx(ev)
		case stateTx:
			s.handleTx(ev)
		case stateFinishTx:
			s.handleFinishTx(ev)
		}
	}
}

// One protocol event : either the timeout elapsed or a message arrived
type event struct {
	timeout bool
	msg     message.Message
}

// Wait for the next protocol event. Rejected datagrams and datagrams
// that fail to decode are dropped and the wait resumes within the
// remaining timeout budget.
func (s *Session) nextEvent() event {
	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	for {
		wait := s.timeout
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				return event{timeout: true}
			}
		}
		ev := s.endpoint.Wait(wait)
		switch ev.Type {
		case transport.EventTimeout:
			return event{timeout: true}
		case transport.EventNothing:
			continue
		}
		msg, err := s.codec.Decode(ev.Data)
		if err != nil {
			log.Warnf("[SESSION][RX] dropping undecodable datagram : %v", err)
			continue
		}
		return event{msg: msg}
	}
}

// Assign the terminal status. Done exactly once, entering stateFinish.
func (s *Session) finish(code tftp.StatusCode) {
	s.state = stateFinish
	s.status = tftp.Status{Code: code}
}

func (s *Session) finishPeerError(code tftp.ErrorCode) {
	log.Warnf("[SESSION][RX] server error | %v", code)
	s.state = stateFinish
	s.status = tftp.Status{Code: tftp.StatusError, PeerError: code}
}

func (s *Session) sendMessage(msg message.Message) error {
	payload, err := s.codec.Encode(msg)
	if err != nil {
		return err
	}
	return s.endpoint.Send(payload)
}
