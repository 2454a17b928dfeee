// Package link implements the point-to-point serial link layer:
// framing, the supervisory and information finite state machines, and
// the stop-and-wait ARQ session built on top of them.
package link

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pclink/serialink/pkg/frame"
)

// Role fixes which side of the handshake a Session plays. It does not
// change during the session's lifetime.
type Role int

const (
	RoleTx Role = iota
	RoleRx
)

func (r Role) String() string {
	if r == RoleTx {
		return "tx"
	}
	return "rx"
}

// Options configures a Session's retry discipline.
type Options struct {
	Retries int           // N: max supervisory/information send attempts
	Timeout time.Duration // per-attempt retransmission deadline
}

// Session drives one open connection over a Port: it owns the
// alternating sequence bits, the retransmission timer and the running
// statistics, and exposes the four link-layer operations.
type Session struct {
	port Port
	role Role
	opts Options

	ns byte // next sequence bit this side will send (Tx role)
	nr byte // next sequence bit this side expects to receive (Rx role)

	timer Timer
	stats Stats
	open  bool
}

// NewSession wraps an already-opened Port. The session is not
// connected until Open succeeds.
func NewSession(port Port, role Role, opts Options) *Session {
	return &Session{port: port, role: role, opts: opts}
}

// Open performs the three-way-free handshake (SET/UA) described in
// the link layer's connection-open FSM. A Tx-role session sends SET
// and awaits UA, retrying up to opts.Retries times; a Rx-role session
// blocks for SET (no retry budget applies to a passive wait) and
// replies UA once.
func (s *Session) Open() error {
	if s.open {
		return ErrAlreadyOpen
	}
	s.ns, s.nr = 0, 0

	switch s.role {
	case RoleTx:
		for attempt := 1; attempt <= s.opts.Retries; attempt++ {
			log.Debugf("[LINK][OPEN] tx attempt %d/%d: sending SET", attempt, s.opts.Retries)
			if err := s.sendSupervisory(frame.AddrTx, frame.Set); err != nil {
				return err
			}
			s.timer.ResetExpirations()
			s.timer.Arm(s.opts.Timeout)
			_, err := s.waitSupervisory(true, Supervisory{Addr: frame.AddrRx, Ctrl: frame.UA})
			if err == nil {
				s.timer.Disarm()
				log.Infof("[LINK][OPEN] handshake complete after %d attempt(s)", attempt)
				s.open = true
				return nil
			}
			if err != ErrTimeout {
				return err
			}
			s.stats.Retransmissions++
			log.Warnf("[LINK][OPEN] attempt %d timed out waiting for UA", attempt)
		}
		return &FatalError{Op: "open", Err: ErrHandshakeFailed}

	case RoleRx:
		log.Debugf("[LINK][OPEN] rx waiting for SET")
		if _, err := s.waitSupervisory(false, Supervisory{Addr: frame.AddrTx, Ctrl: frame.Set}); err != nil {
			return err
		}
		if err := s.sendSupervisory(frame.AddrRx, frame.UA); err != nil {
			return err
		}
		log.Infof("[LINK][OPEN] handshake complete")
		s.open = true
		return nil
	}
	return ErrNotOpen
}

// Write sends one I-frame and waits for its acknowledgement,
// retrying up to opts.Retries times on timeout or REJ before giving
// up. Only a Tx-role session may call Write.
func (s *Session) Write(payload []byte) error {
	if !s.open {
		return ErrNotOpen
	}
	if len(payload) > frame.MaxFragment {
		return ErrFragmentTooLarge
	}

	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		log.Debugf("[LINK][WRITE] attempt %d/%d: sending I(%d), %d bytes", attempt, s.opts.Retries, s.ns, len(payload))
		if err := s.sendInformation(s.ns, payload); err != nil {
			return err
		}
		s.timer.ResetExpirations()
		s.timer.Arm(s.opts.Timeout)
		reply, err := s.waitSupervisory(true,
			Supervisory{Addr: frame.AddrTx, Ctrl: frame.RR(frame.Next(s.ns))},
			Supervisory{Addr: frame.AddrTx, Ctrl: frame.REJ(s.ns)},
		)
		if err == ErrTimeout {
			s.stats.Retransmissions++
			log.Warnf("[LINK][WRITE] attempt %d timed out", attempt)
			continue
		}
		if err != nil {
			return err
		}
		s.timer.Disarm()
		if reply.Ctrl == frame.REJ(s.ns) {
			s.stats.Retransmissions++
			log.Warnf("[LINK][WRITE] peer rejected I(%d), retrying", s.ns)
			continue
		}
		s.stats.Frames++
		s.ns = frame.Next(s.ns)
		return nil
	}
	return &FatalError{Op: "write", Err: ErrFrameRejected}
}

// Read blocks until the next in-sequence I-frame has been delivered
// and acknowledged. Only a Rx-role session may call Read.
func (s *Session) Read() ([]byte, error) {
	if !s.open {
		return nil, ErrNotOpen
	}
	return s.readInformation()
}

// Close runs the disconnect handshake appropriate to this session's
// role and reports the accumulated statistics. If showStats is false
// the Stats value is still returned, just not logged.
func (s *Session) Close(showStats bool) (Stats, error) {
	if !s.open {
		return s.stats, ErrNotOpen
	}

	var err error
	switch s.role {
	case RoleTx:
		err = s.closeTx()
	case RoleRx:
		err = s.closeRx()
	}
	s.open = false
	if err == nil && showStats {
		log.Infof("[LINK][CLOSE] frames=%d retransmissions=%d", s.stats.Frames, s.stats.Retransmissions)
	}
	return s.stats, err
}

// closeTx sends DISC, awaits the peer's own DISC, then sends the
// final UA and terminates.
func (s *Session) closeTx() error {
	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		log.Debugf("[LINK][CLOSE] tx attempt %d/%d: sending DISC", attempt, s.opts.Retries)
		if err := s.sendSupervisory(frame.AddrTx, frame.Disc); err != nil {
			return err
		}
		s.timer.ResetExpirations()
		s.timer.Arm(s.opts.Timeout)
		_, err := s.waitSupervisory(true, Supervisory{Addr: frame.AddrRx, Ctrl: frame.Disc})
		if err == ErrTimeout {
			s.stats.Retransmissions++
			continue
		}
		if err != nil {
			return err
		}
		s.timer.Disarm()
		return s.sendSupervisory(frame.AddrRx, frame.UA)
	}
	return &FatalError{Op: "close", Err: ErrHandshakeFailed}
}

// closeRx waits for the peer's DISC, then repeatedly sends its own
// DISC until either the peer's final UA arrives or, should that UA
// have been lost, the peer's retransmitted DISC arrives instead (in
// which case the local DISC is simply resent).
func (s *Session) closeRx() error {
	log.Debugf("[LINK][CLOSE] rx waiting for peer DISC")
	if _, err := s.waitSupervisory(false, Supervisory{Addr: frame.AddrTx, Ctrl: frame.Disc}); err != nil {
		return err
	}

	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		if err := s.sendSupervisory(frame.AddrRx, frame.Disc); err != nil {
			return err
		}
		s.timer.ResetExpirations()
		s.timer.Arm(s.opts.Timeout)
		reply, err := s.waitSupervisory(true,
			Supervisory{Addr: frame.AddrRx, Ctrl: frame.UA},
			Supervisory{Addr: frame.AddrTx, Ctrl: frame.Disc},
		)
		if err == ErrTimeout {
			s.stats.Retransmissions++
			continue
		}
		if err != nil {
			return err
		}
		s.timer.Disarm()
		if reply.Ctrl == frame.Disc {
			// Peer never saw our DISC/lost our UA-less ack; it's
			// still retrying its own DISC. Resend ours.
			log.Debugf("[LINK][CLOSE] peer resent DISC, resending local DISC")
			continue
		}
		return nil
	}
	return &FatalError{Op: "close", Err: ErrHandshakeFailed}
}

// Stats returns a snapshot of the session's running counters.
func (s *Session) Stats() Stats {
	return s.stats
}
