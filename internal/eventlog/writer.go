// Package eventlog implements the Logger sink contract (spec.md §6):
// record_trade, record_l1, record_l2, record_inventory. Every record
// kind is JSON-line-appendable, callable from a single thread, and
// never raises — a malformed record is swallowed and counted rather
// than panicking the simulation loop.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/snapshot"
)

// RecordKind tags which of the four sink calls produced a Record.
type RecordKind string

const (
	RecordTrade     RecordKind = "trade"
	RecordL1        RecordKind = "l1"
	RecordL2        RecordKind = "l2"
	RecordInventory RecordKind = "inventory"
)

// Record is the on-disk/on-wire shape for every sink call, one
// variant populated per Kind.
type Record struct {
	Kind      RecordKind       `json:"kind"`
	Time      float64          `json:"time"`
	Trade     *domain.Trade    `json:"trade,omitempty"`
	BestBid   *domain.Price    `json:"best_bid,omitempty"`
	BestAsk   *domain.Price    `json:"best_ask,omitempty"`
	Bids      []snapshot.Level `json:"bids,omitempty"`
	Asks      []snapshot.Level `json:"asks,omitempty"`
	AgentID   string           `json:"agent_id,omitempty"`
	Inventory int64            `json:"inventory,omitempty"`
}

// Logger is the sink interface spec.md §6 names. Implementations must
// not raise — Writer and WSBroadcaster both count-and-swallow on I/O
// failure (see their Dropped counters) to honor that contract.
type Logger interface {
	RecordTrade(trade domain.Trade)
	RecordL1(time float64, bestBid, bestAsk *domain.Price)
	RecordL2(time float64, bids, asks []snapshot.Level)
	RecordInventory(time float64, agentID string, inventory int64)
	Close() error
}

// Writer is an append-only JSON-lines Logger backed by a buffered
// file, kept from the teacher's writer shape (bufio.Writer, Count,
// Close) and widened from "one event type" to the four record kinds.
type Writer struct {
	file    *os.File
	writer  *bufio.Writer
	count   uint64
	dropped uint64
}

// NewWriter creates a log file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create event log: %w", err)
	}
	return &Writer{
		file:   f,
		writer: bufio.NewWriterSize(f, 64*1024),
	}, nil
}

func (w *Writer) append(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		w.dropped++
		return
	}
	if _, err := w.writer.Write(data); err != nil {
		w.dropped++
		return
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		w.dropped++
		return
	}
	w.count++
}

func (w *Writer) RecordTrade(trade domain.Trade) {
	w.append(Record{Kind: RecordTrade, Time: trade.Timestamp, Trade: &trade})
}

func (w *Writer) RecordL1(time float64, bestBid, bestAsk *domain.Price) {
	w.append(Record{Kind: RecordL1, Time: time, BestBid: bestBid, BestAsk: bestAsk})
}

func (w *Writer) RecordL2(time float64, bids, asks []snapshot.Level) {
	w.append(Record{Kind: RecordL2, Time: time, Bids: bids, Asks: asks})
}

func (w *Writer) RecordInventory(time float64, agentID string, inventory int64) {
	w.append(Record{Kind: RecordInventory, Time: time, AgentID: agentID, Inventory: inventory})
}

// Count returns the number of records successfully appended.
func (w *Writer) Count() uint64 { return w.count }

// Dropped returns the number of records that failed to marshal or
// write and were silently discarded.
func (w *Writer) Dropped() uint64 { return w.dropped }

// Close flushes and closes the log file.
func (w *Writer) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Reader reads Records back from a JSON-lines log, used by the
// determinism check and the replay command.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewReader opens a log for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 256*1024), 1024*1024)
	return &Reader{file: f, scanner: scanner}, nil
}

// Next reads the next Record. Returns nil, io.EOF at end of log.
func (r *Reader) Next() (*Record, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var rec Record
	if err := json.Unmarshal(r.scanner.Bytes(), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// ReadAll reads every record in the log.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Close closes the log file.
func (r *Reader) Close() error { return r.file.Close() }
