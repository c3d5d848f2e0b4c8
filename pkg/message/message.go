package message

import (
	"fmt"

	tftp "github.com/samsamfire/gotftp"
)

// Opcode identifies a message variant. The first five are the RFC 1350
// messages driven by the session state machine. The remaining four only
// exist in the tagged-union framing and are reserved : both directions
// must round-trip them but the client never emits them.
type Opcode uint16

const (
	OpRRQ          Opcode = 1
	OpWRQ          Opcode = 2
	OpDATA         Opcode = 3
	OpACK          Opcode = 4
	OpERROR        Opcode = 5
	OpLIST         Opcode = 6
	OpLISTRESPONSE Opcode = 7
	OpMKDIR        Opcode = 8
	OpMOVE         Opcode = 9
)

// Transfer mode of a request. Only octet is exercised end-to-end,
// netascii and mail are encoded and decoded but nothing more.
type Mode uint8

const (
	ModeNetascii Mode = 1
	ModeOctet    Mode = 2
	ModeMail     Mode = 3
)

var modeToString = map[Mode]string{
	ModeNetascii: "netascii",
	ModeOctet:    "octet",
	ModeMail:     "mail",
}

func (m Mode) String() string {
	s, ok := modeToString[m]
	if !ok {
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
	return s
}

// Parse a mode string. Mode strings are lowercase on the wire.
func ParseMode(s string) (Mode, error) {
	for mode, str := range modeToString {
		if s == str {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w : %q", ErrInvalidMode, s)
}

// A protocol message. Exactly one concrete variant per value.
type Message interface {
	Opcode() Opcode
}

// Read or write request, opening a session. Op is OpRRQ or OpWRQ.
type Request struct {
	Op       Opcode
	Filename string
	Mode     Mode
}

func (r *Request) Opcode() Opcode { return r.Op }

func NewRRQ(filename string) *Request {
	return &Request{Op: OpRRQ, Filename: filename, Mode: ModeOctet}
}

func NewWRQ(filename string) *Request {
	return &Request{Op: OpWRQ, Filename: filename, Mode: ModeOctet}
}

// One block of payload, 0 to BlockSize bytes. A payload shorter than
// BlockSize marks the end of the transfer.
type Data struct {
	Block   uint16
	Payload []byte
}

func (d *Data) Opcode() Opcode { return OpDATA }

func NewData(block uint16, payload []byte) *Data {
	return &Data{Block: block, Payload: payload}
}

// Acknowledge of a single block
type Ack struct {
	Block uint16
}

func (a *Ack) Opcode() Opcode { return OpACK }

func NewAck(block uint16) *Ack {
	return &Ack{Block: block}
}

// Terminal error from the peer
type Error struct {
	Code    tftp.ErrorCode
	Message string
}

func (e *Error) Opcode() Opcode { return OpERROR }

func NewError(code tftp.ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Reserved variants of the tagged-union framing

// List the contents of a remote directory
type List struct {
	Path string
}

func (l *List) Opcode() Opcode { return OpLIST }

// One remote file, as returned in a listing
type FileInfo struct {
	Name string
	Size int32
}

// A single listing entry : either a file or a directory name
type ListItem struct {
	File *FileInfo
	Dir  string
}

type ListResponse struct {
	Items []ListItem
}

func (l *ListResponse) Opcode() Opcode { return OpLISTRESPONSE }

// Create a remote directory
type Mkdir struct {
	Path string
}

func (m *Mkdir) Opcode() Opcode { return OpMKDIR }

// Rename a remote file
type Move struct {
	From string
	To   string
}

func (m *Move) Opcode() Opcode { return OpMOVE }

// A Codec turns messages into datagram payloads and back. The session
// depends only on this interface, the byte layout is interchangeable.
// Both sides of a transfer must agree on the codec.
type Codec interface {
	Encode(msg Message) ([]byte, error)
	Decode(buffer []byte) (Message, error)
}

// Register a new codec type
// This should be called inside an init() function of the implementation
func RegisterCodec(name string, newCodec NewCodecFunc) {
	codecRegistry[name] = newCodec
}

type NewCodecFunc func() Codec

var codecRegistry = make(map[string]NewCodecFunc)

// Create a codec by name
// Currently supported : classic, proto
func NewCodec(name string) (Codec, error) {
	createCodec, ok := codecRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w : %v", tftp.ErrUnsupportedCodec, name)
	}
	return createCodec(), nil
}
