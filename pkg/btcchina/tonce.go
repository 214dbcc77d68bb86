package btcchina

import (
	"sync/atomic"
	"time"
)

// TonceGenerator issues tonces: microsecond timestamps that strictly increase within
// the process, even for calls made within the same microsecond or across a clock step back.
type TonceGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

// NewTonceGenerator creates a TonceGenerator backed by the wall clock.
func NewTonceGenerator() *TonceGenerator {
	return &TonceGenerator{now: time.Now}
}

// Next returns the next tonce.
func (g *TonceGenerator) Next() int64 {
	for {
		last := g.last.Load()
		next := g.now().UnixMicro()
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
