package client

import (
	"net"
	"testing"
	"time"

	tftp "github.com/samsamfire/gotftp"
	"github.com/samsamfire/gotftp/pkg/message"
	"github.com/stretchr/testify/assert"
)

func TestNewClientAddressValidation(t *testing.T) {
	cli, err := NewClient("192.168.1.10", 69)
	assert.Nil(t, err)
	assert.NotNil(t, cli)

	_, err = NewClient("not-an-address", 69)
	assert.ErrorIs(t, err, tftp.ErrInvalidAddress)

	_, err = NewClient("", 69)
	assert.ErrorIs(t, err, tftp.ErrInvalidAddress)

	// Only dotted-quad IPv4 literals are accepted
	_, err = NewClient("::1", 69)
	assert.ErrorIs(t, err, tftp.ErrInvalidAddress)
}

// A full transfer through the facade against a scripted server
func TestClientDownload(t *testing.T) {
	codec := message.NewClassicCodec()
	service, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	assert.Nil(t, err)
	defer service.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buffer := make([]byte, 1024)
		_ = service.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, clientAddr, err := service.ReadFromUDP(buffer)
		if err != nil {
			t.Error(err)
			return
		}
		transfer, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
		if err != nil {
			t.Error(err)
			return
		}
		defer transfer.Close()
		payload, _ := codec.Encode(message.NewData(1, []byte("content")))
		_, _ = transfer.WriteToUDP(payload, clientAddr)
		_ = transfer.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, _ = transfer.ReadFromUDP(buffer)
	}()

	cli, err := NewClient("127.0.0.1", uint16(service.LocalAddr().(*net.UDPAddr).Port))
	assert.Nil(t, err)
	cli.SetTimeout(500 * time.Millisecond)
	cli.SetMaxRetries(2)

	status, data := cli.Download("a")
	assert.Equal(t, tftp.StatusOK, status.Code)
	assert.Equal(t, []byte("content"), data)
	<-done
}

// No server listening : the handshake times out
func TestClientUploadTimeout(t *testing.T) {
	cli, err := NewClient("127.0.0.1", 9)
	assert.Nil(t, err)
	cli.SetTimeout(100 * time.Millisecond)

	status := cli.Upload([]byte("data"), "f")
	assert.Equal(t, tftp.StatusTimeout, status.Code)
}
