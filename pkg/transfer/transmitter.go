package transfer

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Writer is the link-layer capability a Transmitter needs: send one
// payload, retrying internally, and report a fatal error if the retry
// budget is exhausted. *link.Session satisfies this.
type Writer interface {
	Write(payload []byte) error
}

// Transmitter packetizes a file into START, DATA and END application
// packets and hands each one to the underlying link session.
type Transmitter struct {
	link Writer
}

// NewTransmitter wraps a link Writer.
func NewTransmitter(w Writer) *Transmitter {
	return &Transmitter{link: w}
}

// Send ships name (size bytes, read from r) as a START packet, a
// sequence of DATA packets chunked at MaxPacket bytes, and a final
// END packet.
func (t *Transmitter) Send(name string, size int64, r io.Reader) error {
	header := Header{Size: uint32(size), Name: name}

	log.Debugf("[TRANSFER] sending START for %q (%d bytes)", name, size)
	if err := t.link.Write(EncodeControl(OpStart, header)); err != nil {
		return fmt.Errorf("transfer: send START: %v", err)
	}

	buf := make([]byte, MaxPacket)
	var seq byte
	var sent int64
	for {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			pkt, err := EncodeData(seq, buf[:n])
			if err != nil {
				return err
			}
			if err := t.link.Write(pkt); err != nil {
				return fmt.Errorf("transfer: send DATA seq %d: %v", seq, err)
			}
			sent += int64(n)
			seq++
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("transfer: read %q: %v", name, rerr)
		}
	}

	log.Debugf("[TRANSFER] sending END for %q (%d bytes transmitted)", name, sent)
	if err := t.link.Write(EncodeControl(OpEnd, header)); err != nil {
		return fmt.Errorf("transfer: send END: %v", err)
	}
	return nil
}
