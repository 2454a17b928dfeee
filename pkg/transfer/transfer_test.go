package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeLink is an in-memory FIFO of application packets satisfying
// both Writer and Reader, standing in for a link.Session in tests.
type pipeLink struct {
	ch chan []byte
}

func newPipeLink() *pipeLink {
	return &pipeLink{ch: make(chan []byte, 64)}
}

func (p *pipeLink) Write(payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	p.ch <- cp
	return nil
}

func (p *pipeLink) Read() ([]byte, error) {
	return <-p.ch, nil
}

func TestTransmitterReceiverEndToEnd(t *testing.T) {
	link := newPipeLink()
	tx := NewTransmitter(link)
	rx := NewReceiver(link)

	content := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 2000) // spans multiple MaxPacket chunks

	done := make(chan error, 1)
	var out bytes.Buffer
	var gotHeader Header
	go func() {
		h, err := rx.Receive(&out)
		gotHeader = h
		done <- err
	}()

	require.NoError(t, tx.Send("payload.bin", int64(len(content)), bytes.NewReader(content)))
	require.NoError(t, <-done)

	assert.Equal(t, content, out.Bytes())
	assert.Equal(t, "payload.bin", gotHeader.Name)
	assert.EqualValues(t, len(content), gotHeader.Size)
}

func TestReceiveToFileWritesOwnerReadOnly(t *testing.T) {
	link := newPipeLink()
	tx := NewTransmitter(link)
	rx := NewReceiver(link)

	content := []byte("hello, file transfer")
	dir := t.TempDir()

	done := make(chan error, 1)
	var dest string
	go func() {
		_, d, err := rx.ReceiveToFile(dir)
		dest = d
		done <- err
	}()

	require.NoError(t, tx.Send("greeting.txt", int64(len(content)), bytes.NewReader(content)))
	require.NoError(t, <-done)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, filepath.Join(dir, "greeting.txt"), dest)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.EqualValues(t, 0o400, info.Mode().Perm())
}

func TestReceiveRejectsSizeMismatch(t *testing.T) {
	link := newPipeLink()
	link.ch <- EncodeControl(OpStart, Header{Size: 10, Name: "x"})
	pkt, err := EncodeData(0, []byte{0x01, 0x02})
	require.NoError(t, err)
	link.ch <- pkt
	link.ch <- EncodeControl(OpEnd, Header{})

	rx := NewReceiver(link)
	var out bytes.Buffer
	_, err = rx.Receive(&out)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestReceiveRejectsPacketBeforeStart(t *testing.T) {
	link := newPipeLink()
	pkt, err := EncodeData(0, []byte{0x01})
	require.NoError(t, err)
	link.ch <- pkt

	rx := NewReceiver(link)
	var out bytes.Buffer
	_, err = rx.Receive(&out)
	assert.Error(t, err)
}
