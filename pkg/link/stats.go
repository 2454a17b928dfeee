package link

// Stats accumulates the observable counters a session reports at
// close, replacing the reference implementation's process-global
// comms_stats with per-session state. It deliberately carries only the
// two fields the reference and spec define: Frames counts successfully
// acknowledged I-frames (incremented once per Write call that
// completes, mirroring the original's single stats.frames++ on a
// matching RR), and Retransmissions counts every attempt that had to
// be repeated, whether because of a timeout, a REJ, or a lost
// handshake frame.
type Stats struct {
	Frames          uint64
	Retransmissions uint64
}
