package link

import (
	"time"

	"go.bug.st/serial"
)

// SerialPort adapts a go.bug.st/serial connection to the link.Port
// interface. Its read timeout is kept short and fixed regardless of
// the session's retransmission timeout, so the FSMs can poll the
// Timer at a fine grain instead of blocking for a whole retry period
// on a single read call.
type SerialPort struct {
	conn serial.Port
}

// pollInterval bounds how long a single underlying Read can block
// before SerialPort.ReadByte returns ok == false to let the caller
// check its timer.
const pollInterval = 20 * time.Millisecond

// OpenSerialPort opens dev at the given baud rate, 8 data bits, no
// parity, one stop bit, configured for polling reads.
func OpenSerialPort(dev string, baud int) (*SerialPort, error) {
	conn, err := serial.Open(dev, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &FatalError{Op: "open serial port", Err: err}
	}
	if err := conn.SetReadTimeout(pollInterval); err != nil {
		_ = conn.Close()
		return nil, &FatalError{Op: "configure read timeout", Err: err}
	}
	return &SerialPort{conn: conn}, nil
}

// ReadByte reads a single byte, returning ok == false (not an error)
// if the configured poll interval elapses with nothing received.
func (p *SerialPort) ReadByte() (byte, bool, error) {
	var b [1]byte
	n, err := p.conn.Read(b[:])
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	return b[0], true, nil
}

func (p *SerialPort) Write(buf []byte) (int, error) {
	return p.conn.Write(buf)
}

func (p *SerialPort) Close() error {
	return p.conn.Close()
}
