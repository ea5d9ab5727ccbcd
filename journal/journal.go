// Package journal implements the append-only, length-framed, per-calendar
// day rolling persistence streams described by the trading engine: orders,
// trades, positions, strategies and audit. Framing and replay/rebuild are
// grounded on the teacher pack's events.EventLog (buffered writer,
// sequence numbers, checksum, replay-to-rebuild-state), adapted from a
// single gob stream into explicit length-prefixed records so a partially
// written tail record can be detected and discarded on recovery instead of
// treated as a hard corruption error.
package journal

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrCorruptRecord is returned by ReplayAll when a non-tail record fails its
// checksum. A corrupt or short final record is not an error: it is
// discarded, with a warning logged, as an in-flight write interrupted by a
// crash.
var ErrCorruptRecord = errors.New("journal: corrupt record")

const schemaVersion byte = 1

// frame is the on-disk envelope: 4-byte big-endian length, 1-byte schema
// version, gob-encoded payload, 4-byte CRC32 checksum of the payload.
//
//	[ length:4 ][ version:1 ][ payload:length ][ checksum:4 ]
func writeFrame(w io.Writer, payload []byte) error {
	var hdr [5]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(payload)))
	hdr[4] = schemaVersion
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	sum := crc32.ChecksumIEEE(payload)
	var sumBuf [4]byte
	binary.BigEndian.PutUint32(sumBuf[:], sum)
	_, err := w.Write(sumBuf[:])
	return err
}

// readFrame reads one frame from r. io.EOF at the very start of a frame is
// a clean end of stream. Any other short read (truncated length, payload or
// checksum) indicates a partially-written tail record and is reported via
// io.ErrUnexpectedEOF so callers can distinguish "done" from "discard tail".
func readFrame(r io.Reader) (payload []byte, ok bool, err error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, io.ErrUnexpectedEOF
	}
	length := binary.BigEndian.Uint32(hdr[0:4])
	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, false, io.ErrUnexpectedEOF
	}
	var sumBuf [4]byte
	if _, err := io.ReadFull(r, sumBuf[:]); err != nil {
		return nil, false, io.ErrUnexpectedEOF
	}
	want := binary.BigEndian.Uint32(sumBuf[:])
	got := crc32.ChecksumIEEE(payload)
	if want != got {
		return nil, false, ErrCorruptRecord
	}
	return payload, true, nil
}

// Stream is a single append-only, day-rolling record stream (one of
// orders/trades/positions/strategies/audit).
type Stream struct {
	mu        sync.Mutex
	dir       string
	mode      Mode
	name      string
	file      *os.File
	writer    *bufio.Writer
	seq       uint64
	dayStamp  string
	rollByDay bool
}

// Mode mirrors the persistence.mode configuration surface.
type Mode int

const (
	ModeInMemory Mode = iota
	ModeFileBased
	ModeDurable // fsync after every append
)

// StreamConfig configures one named stream under root/<name>/.
type StreamConfig struct {
	Root      string
	Name      string // "orders", "trades", "positions", "strategies", "audit"
	Mode      Mode
	RollByDay bool // strategies stream does not roll per spec §4.5
}

// Open creates or resumes a stream, positioning for append on today's file.
func Open(cfg StreamConfig) (*Stream, error) {
	s := &Stream{
		dir:       filepath.Join(cfg.Root, cfg.Name),
		mode:      cfg.Mode,
		name:      cfg.Name,
		rollByDay: cfg.RollByDay,
	}
	if s.mode == ModeInMemory {
		return s, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: mkdir %s: %w", s.dir, err)
	}
	if err := s.rollIfNeeded(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream) currentPath() string {
	if s.rollByDay {
		return filepath.Join(s.dir, currentDayStamp()+".log")
	}
	return filepath.Join(s.dir, s.name+".log")
}

func (s *Stream) rollIfNeeded() error {
	day := currentDayStamp()
	if s.file != nil && (!s.rollByDay || day == s.dayStamp) {
		return nil
	}
	if s.file != nil {
		s.writer.Flush()
		s.file.Close()
	}
	path := s.currentPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", path, err)
	}
	s.file = f
	s.writer = bufio.NewWriter(f)
	s.dayStamp = day
	return nil
}

func currentDayStamp() string {
	return time.Now().UTC().Format("20060102")
}

// Append gob-encodes v, frames it, and writes it to the current day's file.
// Returns the assigned monotonic sequence number.
func (s *Stream) Append(v interface{}) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	seq := s.seq

	if s.mode == ModeInMemory {
		return seq, nil
	}
	if err := s.rollIfNeeded(); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return 0, fmt.Errorf("journal: encode: %w", err)
	}
	if err := writeFrame(s.writer, buf.Bytes()); err != nil {
		return 0, fmt.Errorf("journal: write: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return 0, fmt.Errorf("journal: flush: %w", err)
	}
	if s.mode == ModeDurable {
		if err := s.file.Sync(); err != nil {
			return 0, fmt.Errorf("journal: fsync: %w", err)
		}
	}
	return seq, nil
}

// ReplayAll walks every day-file for this stream in lexical (= chronological,
// YYYYMMDD) order and invokes decode+handler for each well-formed record.
// A corrupt tail record in any file is logged and discarded, not treated as
// fatal, per spec's crash-recovery requirement. A corrupt record that is
// NOT the last one in a file is a hard error: the file is damaged, not
// merely truncated.
func (s *Stream) ReplayAll(newRecord func() interface{}, handler func(seq uint64, v interface{}) error) error {
	if s.mode == ModeInMemory {
		return nil
	}
	paths, err := s.listFiles()
	if err != nil {
		return err
	}
	var seq uint64
	for _, path := range paths {
		if err := s.replayFile(path, newRecord, &seq, handler); err != nil {
			return err
		}
	}
	s.seq = seq
	return nil
}

func (s *Stream) listFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	// lexical sort == chronological for both YYYYMMDD.log and the
	// non-rolling single-file name.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(s.dir, n)
	}
	return paths, nil
}

func (s *Stream) replayFile(path string, newRecord func() interface{}, seq *uint64, handler func(uint64, interface{}) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("journal: open for replay %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		payload, ok, err := readFrame(r)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				log.Warn().Str("file", path).Msg("journal: truncated tail record discarded")
				return nil
			}
			if errors.Is(err, ErrCorruptRecord) {
				if _, perr := r.Peek(1); perr == io.EOF {
					log.Warn().Str("file", path).Msg("journal: corrupt tail record discarded")
					return nil
				}
				return fmt.Errorf("journal: %s: %w", path, err)
			}
			return err
		}
		if !ok {
			return nil
		}
		rec := newRecord()
		if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(rec); err != nil {
			return fmt.Errorf("journal: decode %s: %w", path, err)
		}
		*seq++
		if err := handler(*seq, rec); err != nil {
			return fmt.Errorf("journal: handler at seq %d: %w", *seq, err)
		}
	}
}

// Close flushes and closes the current file.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	return s.file.Close()
}

// LastSequence returns the highest sequence number assigned so far.
func (s *Stream) LastSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
