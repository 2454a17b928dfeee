package link

import "sync"

// lossyPort wraps a chanPort and lets a test drop specific writes to
// simulate frames lost in transit, independent of the FSMs under test.
type lossyPort struct {
	*chanPort
	mu     sync.Mutex
	filter func(wire []byte) bool // true => silently drop this write
}

func (p *lossyPort) Write(wire []byte) (int, error) {
	p.mu.Lock()
	drop := p.filter != nil && p.filter(wire)
	p.mu.Unlock()
	if drop {
		return len(wire), nil
	}
	return p.chanPort.Write(wire)
}
