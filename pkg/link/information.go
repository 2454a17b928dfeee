package link

import "github.com/pclink/serialink/pkg/frame"

type infoState int

const (
	infoStart infoState = iota
	infoFlagOk
	infoAddrOk
	infoCtrlOk
	infoAccumulate
	infoDupSet
	infoDupSetBcc
)

// sendInformation writes a full I-frame carrying payload at sequence
// bit ns.
func (s *Session) sendInformation(ns byte, payload []byte) error {
	wire := frame.Encode(frame.AddrTx, frame.I(ns), payload)
	n, err := s.port.Write(wire)
	if err != nil {
		return err
	}
	if n != len(wire) {
		return ErrWriteShort
	}
	return nil
}

// readInformation blocks until one well-formed, correctly sequenced
// I-frame has been received and acknowledged. Duplicate
// retransmissions of the frame already delivered are silently
// re-acked (RR carrying the current nr) without being handed back to
// the caller; frames that fail their payload check are rejected (REJ)
// so the peer retransmits. There is no retry budget here: the
// function only returns once a frame is accepted, an I/O error
// occurs, or the port is closed out from under it.
func (s *Session) readInformation() ([]byte, error) {
	state := infoStart
	var ctrl byte
	buf := make([]byte, 0, frame.MaxFragment+8)
	escapeNext := false

	for {
		b, ok, err := s.port.ReadByte()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		switch state {
		case infoStart:
			if b == frame.Flag {
				state = infoFlagOk
			}

		case infoFlagOk:
			switch {
			case b == frame.Flag:
			case b == frame.AddrTx:
				state = infoAddrOk
			default:
				state = infoStart
			}

		case infoAddrOk:
			switch {
			case b == frame.I0 || b == frame.I1:
				if frame.ISeq(b) == s.nr {
					ctrl = b
					state = infoCtrlOk
				} else {
					// Peer is retransmitting a frame we already
					// accepted; its RR must have been lost. Re-ack
					// without delivering it again.
					if sendErr := s.sendSupervisory(frame.AddrTx, frame.RR(s.nr)); sendErr != nil {
						return nil, sendErr
					}
					s.stats.Retransmissions++
					state = infoStart
				}
			case b == frame.Set:
				// The peer is replaying the open handshake: its UA
				// must have been lost. Absorb this supervisory frame
				// and resend UA without disturbing the data stream.
				state = infoDupSet
			case b == frame.Flag:
				state = infoFlagOk
			default:
				state = infoStart
			}

		case infoDupSet:
			switch {
			case b == frame.AddrTx^frame.Set:
				state = infoDupSetBcc
			case b == frame.Flag:
				state = infoFlagOk
			default:
				state = infoStart
			}

		case infoDupSetBcc:
			if b == frame.Flag {
				if sendErr := s.sendSupervisory(frame.AddrRx, frame.UA); sendErr != nil {
					return nil, sendErr
				}
				s.stats.Retransmissions++
			}
			state = infoStart

		case infoCtrlOk:
			switch {
			case b == frame.AddrTx^ctrl:
				state = infoAccumulate
				buf = buf[:0]
				escapeNext = false
			case b == frame.Flag:
				state = infoFlagOk
			default:
				state = infoStart
			}

		case infoAccumulate:
			switch {
			case b == frame.Flag:
				if len(buf) == 0 {
					state = infoStart
					continue
				}
				payload, bcc2Got := buf[:len(buf)-1], buf[len(buf)-1]
				if frame.BCC2(payload) == bcc2Got {
					s.nr = frame.Next(s.nr)
					if sendErr := s.sendSupervisory(frame.AddrTx, frame.RR(s.nr)); sendErr != nil {
						return nil, sendErr
					}
					out := make([]byte, len(payload))
					copy(out, payload)
					return out, nil
				}
				s.stats.Retransmissions++
				if sendErr := s.sendSupervisory(frame.AddrTx, frame.REJ(s.nr)); sendErr != nil {
					return nil, sendErr
				}
				state = infoStart
			case b == frame.Esc:
				escapeNext = true
			default:
				if escapeNext {
					b ^= frame.StuffXor
					escapeNext = false
				}
				buf = append(buf, b)
			}
		}
	}
}
