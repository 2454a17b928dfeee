package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pclink/serialink/pkg/frame"
)

func TestReadInformationDeliversPayloadAndAcks(t *testing.T) {
	bp := newBufPort()
	bp.feed(frame.Encode(frame.AddrTx, frame.I0, []byte{0xAA, 0xBB, 0xCC}))
	s := newTestSession(bp)

	got, err := s.readInformation()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, got)
	assert.EqualValues(t, 1, s.nr)
	assert.Equal(t, frame.Encode(frame.AddrTx, frame.RR(1), nil), bp.written)
}

func TestReadInformationRejectsBadPayloadCheckThenAcceptsRetransmission(t *testing.T) {
	bp := newBufPort()
	corrupt := frame.Encode(frame.AddrTx, frame.I0, []byte{0x01, 0x02, 0x03})
	corrupt[len(corrupt)-2] ^= 0xFF // flip the BCC2 byte
	bp.feed(corrupt)
	bp.feed(frame.Encode(frame.AddrTx, frame.I0, []byte{0x01, 0x02, 0x03}))
	s := newTestSession(bp)

	got, err := s.readInformation()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
	assert.EqualValues(t, 1, s.stats.Retransmissions)
}

func TestReadInformationIgnoresDuplicateAndReacks(t *testing.T) {
	bp := newBufPort()
	s := newTestSession(bp)
	s.nr = 1 // already accepted I(0) once; expecting I(1) next

	bp.feed(frame.Encode(frame.AddrTx, frame.I0, []byte{0xDE, 0xAD})) // stale retransmission
	bp.feed(frame.Encode(frame.AddrTx, frame.I1, []byte{0xBE, 0xEF}))

	got, err := s.readInformation()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBE, 0xEF}, got)
	assert.EqualValues(t, 0, s.nr)
	assert.EqualValues(t, 1, s.stats.Retransmissions)
}

func TestReadInformationAbsorbsReplayedSetAndResendsUA(t *testing.T) {
	bp := newBufPort()
	s := newTestSession(bp)

	bp.feed(frame.Encode(frame.AddrTx, frame.Set, nil)) // our UA to the peer was lost, it replayed SET
	bp.feed(frame.Encode(frame.AddrTx, frame.I0, []byte{0x01}))

	got, err := s.readInformation()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)

	written := bp.written
	ua := frame.Encode(frame.AddrRx, frame.UA, nil)
	require.True(t, len(written) >= len(ua))
	assert.Equal(t, ua, written[:len(ua)])
}

func TestReadInformationDestuffsEscapedPayload(t *testing.T) {
	bp := newBufPort()
	payload := []byte{frame.Flag, frame.Esc, 0x00}
	bp.feed(frame.Encode(frame.AddrTx, frame.I0, payload))
	s := newTestSession(bp)

	got, err := s.readInformation()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
