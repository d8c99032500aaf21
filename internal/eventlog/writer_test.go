package eventlog

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/snapshot"
	"github.com/shopspring/decimal"
)

func TestWriteAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	price := decimal.NewFromInt(100)
	w.RecordTrade(domain.Trade{Price: price, Qty: 5, Timestamp: 1.0})
	w.RecordL1(2.0, &price, &price)
	w.RecordL2(3.0, []snapshot.Level{{Price: price, Qty: 10}}, nil)
	w.RecordInventory(4.0, "mm-0", 3)

	if w.Count() != 4 {
		t.Fatalf("expected 4 records written, got %d", w.Count())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records read back, got %d", len(records))
	}
	if records[0].Kind != RecordTrade {
		t.Fatalf("expected first record kind trade, got %s", records[0].Kind)
	}
	if records[3].Kind != RecordInventory || records[3].AgentID != "mm-0" {
		t.Fatalf("unexpected fourth record: %+v", records[3])
	}
}

func TestReaderNextReturnsEOFAtEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on empty log, got %v", err)
	}
}

func TestWSBroadcasterCountsNoDropsWithoutClients(t *testing.T) {
	b := NewWSBroadcaster()
	price := decimal.NewFromInt(100)
	b.RecordL1(1.0, &price, &price)
	if b.Dropped() != 0 {
		t.Fatalf("expected no drop when there are simply zero clients, got %d", b.Dropped())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
