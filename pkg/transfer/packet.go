// Package transfer implements the thin application layer carried
// inside link-layer I-frames: START/DATA/END packets that together
// ship one file's metadata and contents from transmitter to receiver.
package transfer

import (
	"encoding/binary"
	"fmt"
)

// Opcode identifies the leading byte of every application packet.
type Opcode byte

const (
	OpStart Opcode = 1
	OpData  Opcode = 2
	OpEnd   Opcode = 3
)

// TLV type tags carried by START/END control packets.
const (
	TagSize byte = 0
	TagName byte = 1
)

// MaxPacket bounds a single data packet's payload so that the whole
// DATA packet (4-byte header plus payload) fits the link layer's
// 3000-byte maximum I-frame payload.
const MaxPacket = 3000 - 4

// Header carries the file metadata exchanged in a START (and,
// advisory only, an END) control packet.
type Header struct {
	Size uint32
	Name string
}

// EncodeControl builds a START or END control packet for header. END
// packets are accepted with an empty Header; callers on the receive
// side must not rely on END's metadata (see DecodeControl).
func EncodeControl(op Opcode, h Header) []byte {
	pkt := []byte{byte(op)}

	sizeV := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeV, h.Size)
	pkt = append(pkt, TagSize, byte(len(sizeV)))
	pkt = append(pkt, sizeV...)

	nameV := []byte(h.Name)
	pkt = append(pkt, TagName, byte(len(nameV)))
	pkt = append(pkt, nameV...)

	return pkt
}

// DecodeControl parses a START or END control packet. The opcode is
// always meaningful; the header is best-effort and may be empty on an
// END packet that carries no TLVs (the far side already knows the
// file's identity from the preceding START).
func DecodeControl(pkt []byte) (Opcode, Header, error) {
	if len(pkt) < 1 {
		return 0, Header{}, fmt.Errorf("transfer: empty control packet")
	}
	op := Opcode(pkt[0])
	if op != OpStart && op != OpEnd {
		return 0, Header{}, fmt.Errorf("transfer: unexpected control opcode %d", op)
	}

	var h Header
	rest := pkt[1:]
	for len(rest) >= 2 {
		tag, length := rest[0], int(rest[1])
		rest = rest[2:]
		if length > len(rest) {
			return op, h, fmt.Errorf("transfer: truncated TLV value for tag %d", tag)
		}
		value := rest[:length]
		rest = rest[length:]
		switch tag {
		case TagSize:
			if length == 4 {
				h.Size = binary.LittleEndian.Uint32(value)
			}
		case TagName:
			h.Name = string(value)
		}
	}
	return op, h, nil
}

// EncodeData builds a DATA packet carrying seq (a modulo-100
// sequence number used only for diagnostics; the link layer already
// guarantees ordering) and payload.
func EncodeData(seq byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPacket {
		return nil, fmt.Errorf("transfer: payload of %d bytes exceeds MaxPacket", len(payload))
	}
	pkt := make([]byte, 0, 4+len(payload))
	pkt = append(pkt, byte(OpData), seq%100)
	pkt = append(pkt, byte(len(payload)>>8), byte(len(payload)))
	pkt = append(pkt, payload...)
	return pkt, nil
}

// DecodeData parses a DATA packet, returning its sequence number and
// payload.
func DecodeData(pkt []byte) (seq byte, payload []byte, err error) {
	if len(pkt) < 4 {
		return 0, nil, fmt.Errorf("transfer: data packet too short")
	}
	if Opcode(pkt[0]) != OpData {
		return 0, nil, fmt.Errorf("transfer: expected DATA opcode, got %d", pkt[0])
	}
	seq = pkt[1]
	length := int(pkt[2])<<8 | int(pkt[3])
	if len(pkt)-4 != length {
		return 0, nil, fmt.Errorf("transfer: data length field %d does not match %d remaining bytes", length, len(pkt)-4)
	}
	return seq, pkt[4:], nil
}
