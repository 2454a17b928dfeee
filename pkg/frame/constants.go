// Package frame implements the on-wire framing format shared by every
// message exchanged over the serial link: flag delimiters, byte
// stuffing and the XOR header/payload checks (BCC1/BCC2).
package frame

// Flag delimits every frame on the wire. It is never stuffed.
const Flag byte = 0x7E

// Esc escapes a literal Flag or Esc byte found inside frame content.
const Esc byte = 0x7D

// StuffXor is XORed into an escaped byte's value after the Esc marker.
const StuffXor byte = 0x20

// Address values.
const (
	AddrTx byte = 0x03 // commands from the transmitter, replies from the receiver
	AddrRx byte = 0x01 // commands from the receiver, replies from the transmitter
)

// Supervisory control values.
const (
	Set  byte = 0x03
	UA   byte = 0x07
	Disc byte = 0x0B
)

// Information frame control values, indexed by the alternating sequence bit.
const (
	I0 byte = 0x00
	I1 byte = 0x80
)

// Receive-ready control values, indexed by the alternating sequence bit.
const (
	RR0 byte = 0xAA
	RR1 byte = 0xAB
)

// Reject control values, indexed by the alternating sequence bit.
const (
	REJ0 byte = 0x54
	REJ1 byte = 0x55
)

// I returns the information control byte for sequence bit n (0 or 1).
func I(n byte) byte {
	if n == 0 {
		return I0
	}
	return I1
}

// RR returns the receive-ready control byte for sequence bit n (0 or 1).
func RR(n byte) byte {
	if n == 0 {
		return RR0
	}
	return RR1
}

// REJ returns the reject control byte for sequence bit n (0 or 1).
func REJ(n byte) byte {
	if n == 0 {
		return REJ0
	}
	return REJ1
}

// Next toggles an alternating sequence bit between 0 and 1.
func Next(n byte) byte {
	return n ^ 0x01
}

// ISeq extracts the sequence bit carried by an I-frame control byte.
func ISeq(c byte) byte {
	return c >> 7
}

// MaxFragment is the largest application packet the link carries in a
// single I-frame payload.
const MaxFragment = 3000
