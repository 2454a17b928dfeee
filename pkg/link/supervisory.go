package link

import "github.com/pclink/serialink/pkg/frame"

// Supervisory names one acceptable (address, control) pair for a
// supervisory-frame wait. Several variants can be awaited at once,
// which is what the close handshake needs: the peer's retransmitted
// DISC and the peer's final UA are both valid outcomes of the same
// wait.
type Supervisory struct {
	Addr byte
	Ctrl byte
}

type supervisoryState int

const (
	svStart supervisoryState = iota
	svFlagOk
	svAddrOk
	svCtrlOk
	svBccOk
)

// sendSupervisory writes a five-byte (no-payload) frame.
func (s *Session) sendSupervisory(addr, ctrl byte) error {
	wire := frame.Encode(addr, ctrl, nil)
	n, err := s.port.Write(wire)
	if err != nil {
		return err
	}
	if n != len(wire) {
		return ErrWriteShort
	}
	return nil
}

// waitSupervisory parses bytes from the port until one of variants is
// confirmed (address, control and BCC1 all match) and the closing flag
// arrives, or an I/O error occurs, or (when useTimeout) the timer
// expires. It tolerates and resyncs past garbage and repeated flags,
// per the framing state table.
func (s *Session) waitSupervisory(useTimeout bool, variants ...Supervisory) (Supervisory, error) {
	state := svStart
	var matchedAddr byte
	var matched Supervisory

	for {
		b, ok, err := s.port.ReadByte()
		if err != nil {
			return Supervisory{}, err
		}
		if ok {
			switch state {
			case svStart:
				if b == frame.Flag {
					state = svFlagOk
				}
			case svFlagOk:
				switch {
				case b == frame.Flag:
					// stay, consecutive flags are idle fill
				case addrInVariants(variants, b):
					matchedAddr = b
					state = svAddrOk
				default:
					state = svStart
				}
			case svAddrOk:
				switch {
				case b == frame.Flag:
					state = svFlagOk
				case ctrlInVariants(variants, matchedAddr, b):
					matched = Supervisory{Addr: matchedAddr, Ctrl: b}
					state = svCtrlOk
				default:
					state = svStart
				}
			case svCtrlOk:
				switch {
				case b == matched.Addr^matched.Ctrl:
					// BCC1 confirmed; a supervisory frame carries no
					// payload, so the next flag closes it.
					state = svBccOk
				case b == frame.Flag:
					state = svFlagOk
				default:
					state = svStart
				}
			case svBccOk:
				if b == frame.Flag {
					return matched, nil
				}
				state = svStart
			}
		}
		if useTimeout && !s.timer.Armed() {
			return Supervisory{}, ErrTimeout
		}
	}
}

func addrInVariants(variants []Supervisory, addr byte) bool {
	for _, v := range variants {
		if v.Addr == addr {
			return true
		}
	}
	return false
}

func ctrlInVariants(variants []Supervisory, addr, ctrl byte) bool {
	for _, v := range variants {
		if v.Addr == addr && v.Ctrl == ctrl {
			return true
		}
	}
	return false
}
