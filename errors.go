package tftp

import "errors"

var (
	ErrIllegalArgument  = errors.New("Error in function arguments")
	ErrInvalidAddress   = errors.New("Server address is not a valid dotted-quad IPv4 literal")
	ErrSessionInUse     = errors.New("Session already ran a transfer, create a new one")
	ErrBlockOverflow    = errors.New("Block number exceeded 65535")
	ErrPayloadTooLarge  = errors.New("DATA payload exceeds maximum block size")
	ErrUnsupportedCodec = errors.New("Unknown codec name")
)
