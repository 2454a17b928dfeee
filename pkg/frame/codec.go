package frame

import "errors"

// ErrTruncated is returned by Decode when the wire buffer does not hold
// a complete, flag-delimited frame.
var ErrTruncated = errors.New("frame: truncated")

// ErrDanglingEscape is returned by Destuff when a trailing Esc byte has
// no following byte to un-escape.
var ErrDanglingEscape = errors.New("frame: dangling escape at end of content")

// ErrBadHeaderCheck is returned by Decode when BCC1 does not match A^C.
var ErrBadHeaderCheck = errors.New("frame: header check (BCC1) mismatch")

// ErrBadPayloadCheck is returned by Decode when BCC2 does not match the
// XOR of the payload bytes.
var ErrBadPayloadCheck = errors.New("frame: payload check (BCC2) mismatch")

// BCC2 computes the XOR checksum of a payload. It returns 0 for an
// empty payload, matching the supervisory (no-payload) frame shape.
func BCC2(payload []byte) byte {
	var c byte
	for _, b := range payload {
		c ^= b
	}
	return c
}

// Stuff applies byte stuffing to logical content: every Flag or Esc
// byte is replaced by Esc followed by the original byte XOR StuffXor.
func Stuff(content []byte) []byte {
	out := make([]byte, 0, len(content)+2)
	for _, b := range content {
		if b == Flag || b == Esc {
			out = append(out, Esc, b^StuffXor)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// Destuff reverses Stuff. It errors if content ends mid-escape.
func Destuff(content []byte) ([]byte, error) {
	out := make([]byte, 0, len(content))
	escaped := false
	for _, b := range content {
		if escaped {
			out = append(out, b^StuffXor)
			escaped = false
			continue
		}
		if b == Esc {
			escaped = true
			continue
		}
		out = append(out, b)
	}
	if escaped {
		return nil, ErrDanglingEscape
	}
	return out, nil
}

// Encode builds a complete, flag-delimited, stuffed wire frame for
// address addr, control ctrl and payload (nil/empty for a supervisory
// frame). Output size is bounded by 2*(len(payload)+4)+2 bytes.
func Encode(addr, ctrl byte, payload []byte) []byte {
	content := make([]byte, 0, len(payload)+4)
	content = append(content, addr, ctrl, addr^ctrl)
	if len(payload) > 0 {
		content = append(content, payload...)
		content = append(content, BCC2(payload))
	}
	wire := make([]byte, 0, len(content)*2+2)
	wire = append(wire, Flag)
	wire = append(wire, Stuff(content)...)
	wire = append(wire, Flag)
	return wire
}

// Decode parses a complete wire frame (including both flags) back into
// its address, control and payload. Used for property testing and by
// callers that already have a whole frame buffered; the live FSMs in
// package link decode inline, byte by byte, per the state tables.
func Decode(wire []byte) (addr, ctrl byte, payload []byte, err error) {
	if len(wire) < 2 || wire[0] != Flag || wire[len(wire)-1] != Flag {
		return 0, 0, nil, ErrTruncated
	}
	content, err := Destuff(wire[1 : len(wire)-1])
	if err != nil {
		return 0, 0, nil, err
	}
	if len(content) < 3 {
		return 0, 0, nil, ErrTruncated
	}
	addr, ctrl, bcc1 := content[0], content[1], content[2]
	if bcc1 != addr^ctrl {
		return 0, 0, nil, ErrBadHeaderCheck
	}
	rest := content[3:]
	if len(rest) == 0 {
		return addr, ctrl, nil, nil
	}
	payload, bcc2 := rest[:len(rest)-1], rest[len(rest)-1]
	if BCC2(payload) != bcc2 {
		return 0, 0, nil, ErrBadPayloadCheck
	}
	return addr, ctrl, payload, nil
}

// EncodedLenUpperBound returns the worst-case wire size for a payload
// of n bytes, per spec: 2*(n+4)+2.
func EncodedLenUpperBound(n int) int {
	return 2*(n+4) + 2
}
