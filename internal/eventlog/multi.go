package eventlog

import (
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/snapshot"
)

// MultiLogger fans every sink call out to more than one Logger, e.g.
// the durable file Writer plus a live WSBroadcaster for spectation.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines sinks into one Logger.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

func (m *MultiLogger) RecordTrade(trade domain.Trade) {
	for _, s := range m.sinks {
		s.RecordTrade(trade)
	}
}

func (m *MultiLogger) RecordL1(time float64, bestBid, bestAsk *domain.Price) {
	for _, s := range m.sinks {
		s.RecordL1(time, bestBid, bestAsk)
	}
}

func (m *MultiLogger) RecordL2(time float64, bids, asks []snapshot.Level) {
	for _, s := range m.sinks {
		s.RecordL2(time, bids, asks)
	}
}

func (m *MultiLogger) RecordInventory(time float64, agentID string, inventory int64) {
	for _, s := range m.sinks {
		s.RecordInventory(time, agentID, inventory)
	}
}

// Close closes every sink, returning the first error encountered.
func (m *MultiLogger) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
