package message

import "errors"

// Decode errors. Callers drop the datagram and keep waiting, a decode
// failure is never fatal to a session.
var (
	ErrTruncated          = errors.New("message shorter than its fixed header")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrMissingTerminator  = errors.New("string field is missing its terminator")
	ErrInvalidMode        = errors.New("invalid transfer mode")
	ErrMalformed          = errors.New("malformed message")
	ErrUnsupportedMessage = errors.New("message not representable in this encoding")
)
