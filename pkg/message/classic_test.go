package message

import (
	"bytes"
	"testing"

	tftp "github.com/samsamfire/gotftp"
	"github.com/stretchr/testify/assert"
)

func TestClassicRoundTrip(t *testing.T) {
	codec := NewClassicCodec()
	msgs := []Message{
		NewRRQ("file.txt"),
		NewWRQ("file.txt"),
		&Request{Op: OpRRQ, Filename: "a", Mode: ModeNetascii},
		&Request{Op: OpWRQ, Filename: "b", Mode: ModeMail},
		NewData(1, []byte("xyz")),
		NewData(2, bytes.Repeat([]byte{0xAA}, tftp.BlockSize)),
		NewData(3, nil),
		NewAck(0),
		NewAck(65535),
		NewError(tftp.ErrFileNotFound, "file not found"),
		NewError(tftp.ErrDiskFull, ""),
	}
	for _, msg := range msgs {
		encoded, err := codec.Encode(msg)
		assert.Nil(t, err)
		decoded, err := codec.Decode(encoded)
		assert.Nil(t, err)
		assert.Equal(t, msg, decoded)
	}
}

func TestClassicWireFormat(t *testing.T) {
	codec := NewClassicCodec()

	t.Run("rrq", func(t *testing.T) {
		encoded, err := codec.Encode(NewRRQ("a"))
		assert.Nil(t, err)
		assert.Equal(t, []byte{0, 1, 'a', 0, 'o', 'c', 't', 'e', 't', 0}, encoded)
	})
	t.Run("data", func(t *testing.T) {
		encoded, err := codec.Encode(NewData(1, []byte("xyz")))
		assert.Nil(t, err)
		assert.Equal(t, []byte{0, 3, 0, 1, 'x', 'y', 'z'}, encoded)
	})
	t.Run("ack", func(t *testing.T) {
		encoded, err := codec.Encode(NewAck(5))
		assert.Nil(t, err)
		assert.Equal(t, []byte{0, 4, 0, 5}, encoded)
	})
	t.Run("error", func(t *testing.T) {
		encoded, err := codec.Encode(NewError(tftp.ErrUnknownTID, "bad tid"))
		assert.Nil(t, err)
		assert.Equal(t, []byte{0, 5, 0, 5, 'b', 'a', 'd', ' ', 't', 'i', 'd', 0}, encoded)
	})
}

func TestClassicDecodeErrors(t *testing.T) {
	codec := NewClassicCodec()

	t.Run("truncated header", func(t *testing.T) {
		_, err := codec.Decode([]byte{0})
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("unknown opcode", func(t *testing.T) {
		_, err := codec.Decode([]byte{0, 9, 0, 0})
		assert.ErrorIs(t, err, ErrUnknownOpcode)
	})
	t.Run("missing terminator", func(t *testing.T) {
		_, err := codec.Decode([]byte{0, 1, 'a'})
		assert.ErrorIs(t, err, ErrMissingTerminator)
	})
	t.Run("uppercase mode rejected", func(t *testing.T) {
		_, err := codec.Decode([]byte{0, 1, 'a', 0, 'O', 'C', 'T', 'E', 'T', 0})
		assert.ErrorIs(t, err, ErrInvalidMode)
	})
	t.Run("oversized payload", func(t *testing.T) {
		buffer := append([]byte{0, 3, 0, 1}, make([]byte, tftp.BlockSize+1)...)
		_, err := codec.Decode(buffer)
		assert.ErrorIs(t, err, tftp.ErrPayloadTooLarge)
	})
	t.Run("truncated ack", func(t *testing.T) {
		_, err := codec.Decode([]byte{0, 4, 0})
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("error without terminator", func(t *testing.T) {
		_, err := codec.Decode([]byte{0, 5, 0, 1, 'x'})
		assert.ErrorIs(t, err, ErrMissingTerminator)
	})
}

func TestClassicEncodeErrors(t *testing.T) {
	codec := NewClassicCodec()

	_, err := codec.Encode(NewData(1, make([]byte, tftp.BlockSize+1)))
	assert.ErrorIs(t, err, tftp.ErrPayloadTooLarge)

	_, err = codec.Encode(&Request{Op: OpDATA, Filename: "a", Mode: ModeOctet})
	assert.ErrorIs(t, err, tftp.ErrIllegalArgument)

	// Reserved variants only exist in the tagged-union framing
	_, err = codec.Encode(&List{Path: "/"})
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
	_, err = codec.Encode(&Mkdir{Path: "/x"})
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
}

func TestCodecRegistry(t *testing.T) {
	codec, err := NewCodec("classic")
	assert.Nil(t, err)
	assert.IsType(t, &Classic{}, codec)

	codec, err = NewCodec("proto")
	assert.Nil(t, err)
	assert.IsType(t, &Proto{}, codec)

	_, err = NewCodec("bogus")
	assert.ErrorIs(t, err, tftp.ErrUnsupportedCodec)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("octet")
	assert.Nil(t, err)
	assert.Equal(t, ModeOctet, mode)
	mode, err = ParseMode("netascii")
	assert.Nil(t, err)
	assert.Equal(t, ModeNetascii, mode)
	mode, err = ParseMode("mail")
	assert.Nil(t, err)
	assert.Equal(t, ModeMail, mode)
	_, err = ParseMode("Octet")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
