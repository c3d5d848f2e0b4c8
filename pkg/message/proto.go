package message

import (
	"fmt"

	tftp "github.com/samsamfire/gotftp"
	"google.golang.org/protobuf/encoding/protowire"
)

func init() {
	RegisterCodec("proto", NewProtoCodec)
}

// Proto is the length-delimited tagged-union framing : the outer
// message carries exactly one embedded field whose number (1..9)
// selects the variant, fields inside each variant are protobuf scalar
// encodings. Both endpoints of a transfer must be built with it, the
// format is not interoperable with classic TFTP servers.
type Proto struct{}

func NewProtoCodec() Codec {
	return &Proto{}
}

func (p *Proto) Encode(msg Message) ([]byte, error) {
	var inner []byte

	switch m := msg.(type) {
	case *Request:
		if m.Op != OpRRQ && m.Op != OpWRQ {
			return nil, tftp.ErrIllegalArgument
		}
		inner = appendString(inner, 1, m.Filename)
		inner = protowire.AppendTag(inner, 2, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(m.Mode))
	case *Data:
		if len(m.Payload) > tftp.BlockSize {
			return nil, tftp.ErrPayloadTooLarge
		}
		inner = protowire.AppendTag(inner, 1, protowire.BytesType)
		inner = protowire.AppendBytes(inner, m.Payload)
		inner = protowire.AppendTag(inner, 2, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(m.Block))
	case *Ack:
		inner = protowire.AppendTag(inner, 1, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(m.Block))
	case *Error:
		inner = protowire.AppendTag(inner, 1, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(m.Code))
		if m.Message != "" {
			inner = appendString(inner, 2, m.Message)
		}
	case *List:
		inner = appendString(inner, 1, m.Path)
	case *ListResponse:
		for _, item := range m.Items {
			inner = protowire.AppendTag(inner, 1, protowire.BytesType)
			inner = protowire.AppendBytes(inner, encodeListItem(item))
		}
	case *Mkdir:
		inner = appendString(inner, 1, m.Path)
	case *Move:
		inner = appendString(inner, 1, m.From)
		if m.To != "" {
			inner = appendString(inner, 2, m.To)
		}
	default:
		return nil, fmt.Errorf("%w : opcode %v", ErrUnsupportedMessage, msg.Opcode())
	}

	buffer := protowire.AppendTag(nil, protowire.Number(msg.Opcode()), protowire.BytesType)
	buffer = protowire.AppendBytes(buffer, inner)
	return buffer, nil
}

func (p *Proto) Decode(buffer []byte) (Message, error) {
	if len(buffer) == 0 {
		return nil, ErrTruncated
	}
	var msg Message
	b := buffer
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		if typ != protowire.BytesType || num < 1 || num > 9 {
			return nil, fmt.Errorf("%w : field %v", ErrUnknownOpcode, num)
		}
		inner, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]

		var err error
		switch num {
		case 1:
			msg, err = decodeRequest(OpRRQ, inner)
		case 2:
			msg, err = decodeRequest(OpWRQ, inner)
		case 3:
			msg, err = decodeData(inner)
		case 4:
			msg, err = decodeAck(inner)
		case 5:
			msg, err = decodeError(inner)
		case 6:
			var path string
			path, err = decodePath(inner)
			msg = &List{Path: path}
		case 7:
			msg, err = decodeListResponse(inner)
		case 8:
			var path string
			path, err = decodePath(inner)
			msg = &Mkdir{Path: path}
		case 9:
			msg, err = decodeMove(inner)
		}
		if err != nil {
			return nil, err
		}
	}
	if msg == nil {
		return nil, ErrMalformed
	}
	return msg, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func encodeListItem(item ListItem) []byte {
	var b []byte
	if item.File != nil {
		var file []byte
		file = appendString(file, 1, item.File.Name)
		file = protowire.AppendTag(file, 2, protowire.VarintType)
		file = protowire.AppendVarint(file, uint64(int64(item.File.Size)))
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, file)
		return b
	}
	var dir []byte
	dir = appendString(dir, 1, item.Dir)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, dir)
	return b
}

func decodeRequest(op Opcode, b []byte) (Message, error) {
	req := &Request{Op: op}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			req.Filename = string(v)
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			if v < uint64(ModeNetascii) || v > uint64(ModeMail) {
				return nil, fmt.Errorf("%w : %v", ErrInvalidMode, v)
			}
			req.Mode = Mode(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrMalformed
			}
			b = b[n:]
		}
	}
	if req.Mode == 0 {
		return nil, fmt.Errorf("%w : request without mode", ErrMalformed)
	}
	return req, nil
}

func decodeData(b []byte) (Message, error) {
	data := &Data{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			if len(v) > tftp.BlockSize {
				return nil, tftp.ErrPayloadTooLarge
			}
			data.Payload = append([]byte(nil), v...)
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			if v > 0xFFFF {
				return nil, fmt.Errorf("%w : block %v out of range", ErrMalformed, v)
			}
			data.Block = uint16(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrMalformed
			}
			b = b[n:]
		}
	}
	return data, nil
}

func decodeAck(b []byte) (Message, error) {
	ack := &Ack{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			if v > 0xFFFF {
				return nil, fmt.Errorf("%w : block %v out of range", ErrMalformed, v)
			}
			ack.Block = uint16(v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
	}
	return ack, nil
}

func decodeError(b []byte) (Message, error) {
	errMsg := &Error{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			if v > 0xFFFF {
				return nil, fmt.Errorf("%w : error code %v out of range", ErrMalformed, v)
			}
			errMsg.Code = tftp.ErrorCode(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			errMsg.Message = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrMalformed
			}
			b = b[n:]
		}
	}
	return errMsg, nil
}

func decodePath(b []byte) (string, error) {
	var path string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", ErrMalformed
		}
		b = b[n:]
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", ErrMalformed
			}
			path = string(v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return "", ErrMalformed
		}
		b = b[n:]
	}
	return path, nil
}

func decodeListResponse(b []byte) (Message, error) {
	resp := &ListResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			item, err := decodeListItem(v)
			if err != nil {
				return nil, err
			}
			resp.Items = append(resp.Items, item)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
	}
	return resp, nil
}

func decodeListItem(b []byte) (ListItem, error) {
	item := ListItem{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return item, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return item, ErrMalformed
			}
			file, err := decodeFile(v)
			if err != nil {
				return item, err
			}
			item.File = file
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return item, ErrMalformed
			}
			dir, err := decodePath(v)
			if err != nil {
				return item, err
			}
			item.Dir = dir
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return item, ErrMalformed
			}
			b = b[n:]
		}
	}
	return item, nil
}

func decodeFile(b []byte) (*FileInfo, error) {
	file := &FileInfo{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			file.Name = string(v)
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			file.Size = int32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrMalformed
			}
			b = b[n:]
		}
	}
	return file, nil
}

func decodeMove(b []byte) (Message, error) {
	move := &Move{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			move.From = string(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			move.To = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrMalformed
			}
			b = b[n:]
		}
	}
	return move, nil
}
