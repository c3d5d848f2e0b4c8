package session

import (
	tftp "github.com/samsamfire/gotftp"
	"github.com/samsamfire/gotftp/pkg/message"
	log "github.com/sirupsen/logrus"
)

// Handler for state RX : expecting DATA blocks in sequence.
// Every DATA is acknowledged, duplicates included, so that a server
// whose ACK got lost keeps making progress. Only the expected block is
// appended to the buffer.
func (s *Session) handleRx(ev event) {
	if ev.timeout {
		s.finish(tftp.StatusTimeout)
		return
	}
	switch m := ev.msg.(type) {
	case *message.Data:
		last := false
		if uint32(m.Block) == s.seqno {
			if s.seqno >= blockNumberMax {
				log.Errorf("[SESSION] %v", tftp.ErrBlockOverflow)
				_ = s.sendAck(m.Block)
				s.finish(tftp.StatusUnknown)
				return
			}
			s.seqno++
			s.buffer.Write(m.Payload)
			last = len(m.Payload) < tftp.BlockSize
			log.Debugf("[SESSION][RX] DATA block %v | %v bytes", m.Block, len(m.Payload))
		} else {
			log.Debugf("[SESSION][RX] DATA block %v out of sequence (expected %v), re-acknowledging", m.Block, s.seqno)
		}
		if err := s.sendAck(m.Block); err != nil {
			log.Errorf("[SESSION][TX] ACK failed : %v", err)
			s.finish(tftp.StatusUnknown)
			return
		}
		if last {
			s.finish(tftp.StatusOK)
		}
	case *message.Error:
		s.finishPeerError(m.Code)
	default:
		log.Warnf("[SESSION][RX] ignoring unexpected %v message", ev.msg.Opcode())
	}
}

// Handler for state InitTX : the write request is out, waiting for the
// zero acknowledge that opens the transfer
func (s *Session) handleInitTx(ev event) {
	if ev.timeout {
		s.finish(tftp.StatusTimeout)
		return
	}
	switch m := ev.msg.(type) {
	case *message.Ack:
		if m.Block == 0 {
			s.seqno = 1
			s.retries = 0
			s.sendNext()
		} else {
			log.Warnf("[SESSION][RX] unexpected ACK block %v during handshake", m.Block)
			s.finish(tftp.StatusUnknown)
		}
	case *message.Error:
		s.finishPeerError(m.Code)
	default:
		log.Warnf("[SESSION][RX] ignoring unexpected %v message", ev.msg.Opcode())
	}
}

// Handler for state TX : a full-size DATA is outstanding.
// The acknowledged chunk is dropped from the front of the buffer only
// when its ACK arrives, retransmissions resend the same chunk.
func (s *Session) handleTx(ev event) {
	if ev.timeout {
		s.retransmit()
		return
	}
	switch m := ev.msg.(type) {
	case *message.Ack:
		if uint32(m.Block) != s.seqno {
			log.Debugf("[SESSION][RX] stray ACK block %v (expected %v), ignoring", m.Block, s.seqno)
			return
		}
		if s.seqno >= blockNumberMax {
			log.Errorf("[SESSION] %v", tftp.ErrBlockOverflow)
			s.finish(tftp.StatusUnknown)
			return
		}
		s.seqno++
		s.retries = 0
		s.buffer.Discard(tftp.BlockSize)
		s.sendNext()
	case *message.Error:
		s.finishPeerError(m.Code)
	default:
		log.Warnf("[SESSION][RX] ignoring unexpected %v message", ev.msg.Opcode())
	}
}

// Handler for state FinishTX : the short (or empty) final DATA is
// outstanding, its acknowledge completes the transfer
func (s *Session) handleFinishTx(ev event) {
	if ev.timeout {
		s.retransmit()
		return
	}
	switch m := ev.msg.(type) {
	case *message.Ack:
		if uint32(m.Block) == s.seqno {
			s.finish(tftp.StatusOK)
		} else {
			log.Debugf("[SESSION][RX] stray ACK block %v (expected %v), ignoring", m.Block, s.seqno)
		}
	case *message.Error:
		s.finishPeerError(m.Code)
	default:
		log.Warnf("[SESSION][RX] ignoring unexpected %v message", ev.msg.Opcode())
	}
}

// Send the DATA message for the current front chunk of the buffer.
// Returns whether this is the final block of the transfer.
func (s *Session) sendData() (bool, error) {
	chunk := s.buffer.Peek(tftp.BlockSize)
	if err := s.sendMessage(message.NewData(uint16(s.seqno), chunk)); err != nil {
		return false, err
	}
	log.Debugf("[SESSION][TX] DATA block %v | %v bytes", s.seqno, len(chunk))
	return len(chunk) < tftp.BlockSize, nil
}

// Send the next chunk and pick the follow-up state : TX for a full
// block, FinishTX for the short block closing the transfer
func (s *Session) sendNext() {
	last, err := s.sendData()
	if err != nil {
		log.Errorf("[SESSION][TX] DATA failed : %v", err)
		s.finish(tftp.StatusUnknown)
		return
	}
	if last {
		s.state = stateFinishTx
	} else {
		s.state = stateTx
	}
}

// Resend the outstanding chunk, within the retry budget
func (s *Session) retransmit() {
	if s.retries >= s.maxRetries {
		s.finish(tftp.StatusMaxRetriesExceeded)
		return
	}
	s.retries++
	log.Warnf("[SESSION][TX] retransmitting DATA block %v | attempt %v/%v", s.seqno, s.retries, s.maxRetries)
	if _, err := s.sendData(); err != nil {
		log.Errorf("[SESSION][TX] DATA failed : %v", err)
		s.finish(tftp.StatusUnknown)
	}
}

func (s *Session) sendAck(block uint16) error {
	return s.sendMessage(message.NewAck(block))
}
