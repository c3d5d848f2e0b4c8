package message

import (
	"bytes"
	"encoding/binary"
	"fmt"

	tftp "github.com/samsamfire/gotftp"
)

func init() {
	RegisterCodec("classic", NewClassicCodec)
}

// Classic is the RFC 1350 on-the-wire format : a 2 byte big-endian
// opcode followed by the fields of the variant. Strings are 7-bit
// ASCII terminated by a zero byte. This is the authoritative codec for
// interoperability with standard TFTP servers.
type Classic struct{}

func NewClassicCodec() Codec {
	return &Classic{}
}

func (c *Classic) Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *Request:
		if m.Op != OpRRQ && m.Op != OpWRQ {
			return nil, tftp.ErrIllegalArgument
		}
		mode := m.Mode.String()
		buffer := make([]byte, 0, 2+len(m.Filename)+1+len(mode)+1)
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(m.Op))
		buffer = append(buffer, m.Filename...)
		buffer = append(buffer, 0)
		buffer = append(buffer, mode...)
		buffer = append(buffer, 0)
		return buffer, nil

	case *Data:
		if len(m.Payload) > tftp.BlockSize {
			return nil, tftp.ErrPayloadTooLarge
		}
		buffer := make([]byte, 0, 4+len(m.Payload))
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(OpDATA))
		buffer = binary.BigEndian.AppendUint16(buffer, m.Block)
		buffer = append(buffer, m.Payload...)
		return buffer, nil

	case *Ack:
		buffer := make([]byte, 0, 4)
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(OpACK))
		buffer = binary.BigEndian.AppendUint16(buffer, m.Block)
		return buffer, nil

	case *Error:
		buffer := make([]byte, 0, 4+len(m.Message)+1)
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(OpERROR))
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(m.Code))
		buffer = append(buffer, m.Message...)
		buffer = append(buffer, 0)
		return buffer, nil

	default:
		// List, ListResponse, Mkdir, Move have no classic representation
		return nil, fmt.Errorf("%w : opcode %v", ErrUnsupportedMessage, msg.Opcode())
	}
}

func (c *Classic) Decode(buffer []byte) (Message, error) {
	if len(buffer) < 2 {
		return nil, ErrTruncated
	}
	opcode := Opcode(binary.BigEndian.Uint16(buffer))

	switch opcode {
	case OpRRQ, OpWRQ:
		filename, rest, err := consumeString(buffer[2:])
		if err != nil {
			return nil, err
		}
		modeStr, _, err := consumeString(rest)
		if err != nil {
			return nil, err
		}
		mode, err := ParseMode(modeStr)
		if err != nil {
			return nil, err
		}
		return &Request{Op: opcode, Filename: filename, Mode: mode}, nil

	case OpDATA:
		if len(buffer) < 4 {
			return nil, ErrTruncated
		}
		payload := buffer[4:]
		if len(payload) > tftp.BlockSize {
			return nil, tftp.ErrPayloadTooLarge
		}
		data := &Data{Block: binary.BigEndian.Uint16(buffer[2:4])}
		data.Payload = append(data.Payload, payload...)
		return data, nil

	case OpACK:
		if len(buffer) < 4 {
			return nil, ErrTruncated
		}
		return &Ack{Block: binary.BigEndian.Uint16(buffer[2:4])}, nil

	case OpERROR:
		if len(buffer) < 4 {
			return nil, ErrTruncated
		}
		msg, _, err := consumeString(buffer[4:])
		if err != nil {
			return nil, err
		}
		return &Error{Code: tftp.ErrorCode(binary.BigEndian.Uint16(buffer[2:4])), Message: msg}, nil

	default:
		return nil, fmt.Errorf("%w : %v", ErrUnknownOpcode, uint16(opcode))
	}
}

// Read a zero-terminated string, return it with the remaining bytes
func consumeString(buffer []byte) (string, []byte, error) {
	end := bytes.IndexByte(buffer, 0)
	if end < 0 {
		return "", nil, ErrMissingTerminator
	}
	return string(buffer[:end]), buffer[end+1:], nil
}
