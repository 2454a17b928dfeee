package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Reader is the link-layer capability a Receiver needs: block for the
// next delivered application packet. *link.Session satisfies this.
type Reader interface {
	Read() ([]byte, error)
}

// Receiver reassembles START/DATA/END application packets back into a
// file.
type Receiver struct {
	link Reader
}

// NewReceiver wraps a link Reader.
func NewReceiver(r Reader) *Receiver {
	return &Receiver{link: r}
}

// Receive blocks for a START packet, writes every DATA packet's
// payload to w in arrival order, and returns once END arrives. The
// transferred byte count is checked against the size START declared;
// END's own metadata is not trusted (it is carried only for
// diagnostics, not validated).
func (r *Receiver) Receive(w io.Writer) (Header, error) {
	pkt, err := r.link.Read()
	if err != nil {
		return Header{}, fmt.Errorf("transfer: receive START: %v", err)
	}
	op, header, err := DecodeControl(pkt)
	if err != nil {
		return Header{}, err
	}
	if op != OpStart {
		return Header{}, ErrUnexpectedPacket
	}
	log.Debugf("[TRANSFER] received START for %q (%d bytes expected)", header.Name, header.Size)

	var received int64
	for {
		pkt, err := r.link.Read()
		if err != nil {
			return header, fmt.Errorf("transfer: receive packet: %v", err)
		}
		if len(pkt) == 0 {
			return header, ErrUnexpectedPacket
		}
		switch Opcode(pkt[0]) {
		case OpData:
			_, payload, err := DecodeData(pkt)
			if err != nil {
				return header, err
			}
			if _, err := w.Write(payload); err != nil {
				return header, fmt.Errorf("transfer: write payload: %v", err)
			}
			received += int64(len(payload))
		case OpEnd:
			if received != int64(header.Size) {
				log.Warnf("[TRANSFER] received %d bytes, START declared %d", received, header.Size)
				return header, ErrSizeMismatch
			}
			log.Infof("[TRANSFER] received END, %d bytes written", received)
			return header, nil
		default:
			return header, ErrUnexpectedPacket
		}
	}
}

// ReceiveToFile receives a file into destDir, named after the
// transfer's START header, and leaves it owner-read-only once
// complete. The destination path is returned alongside the header.
func (r *Receiver) ReceiveToFile(destDir string) (Header, string, error) {
	// Peek the header by receiving into a temp file, since the
	// destination name is only known once START has arrived.
	tmp, err := os.CreateTemp(destDir, ".transfer-*")
	if err != nil {
		return Header{}, "", fmt.Errorf("transfer: create temp file: %v", err)
	}
	tmpPath := tmp.Name()

	header, recvErr := r.receiveInto(tmp)
	closeErr := tmp.Close()
	if recvErr != nil {
		_ = os.Remove(tmpPath)
		return header, "", recvErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return header, "", fmt.Errorf("transfer: close temp file: %v", closeErr)
	}

	dest := filepath.Join(destDir, filepath.Base(header.Name))
	if err := os.Rename(tmpPath, dest); err != nil {
		return header, "", fmt.Errorf("transfer: rename into place: %v", err)
	}
	if err := os.Chmod(dest, 0o400); err != nil {
		return header, "", fmt.Errorf("transfer: mark %q owner-read-only: %v", dest, err)
	}
	return header, dest, nil
}

func (r *Receiver) receiveInto(w io.Writer) (Header, error) {
	return r.Receive(w)
}
