package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/aldealabs/aldea/internal/events"
	"github.com/aldealabs/aldea/internal/protocol"
)

// ArchiveDay writes a day's events to dir as zstd-compressed JSON lines.
// The live ledger keeps the rows; archives are for offline replay and
// shipping off-box.
func ArchiveDay(dir string, day int, evs []events.WorldEvent) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &protocol.PersistenceError{Op: "create archive dir", Err: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("day-%04d.jsonl.zst", day))

	f, err := os.Create(path)
	if err != nil {
		return &protocol.PersistenceError{Op: "create archive", Err: err}
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return &protocol.PersistenceError{Op: "init compressor", Err: err}
	}
	enc := json.NewEncoder(zw)
	for _, ev := range evs {
		if err := enc.Encode(ev); err != nil {
			zw.Close()
			return &protocol.PersistenceError{Op: "encode event", Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return &protocol.PersistenceError{Op: "flush archive", Err: err}
	}
	return nil
}

// ReadArchive loads a day archive written by ArchiveDay.
func ReadArchive(path string) ([]events.WorldEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &protocol.PersistenceError{Op: "open archive", Err: err}
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, &protocol.PersistenceError{Op: "init decompressor", Err: err}
	}
	defer zr.Close()

	var out []events.WorldEvent
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev events.WorldEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, &protocol.PersistenceError{Op: "decode archived event", Err: err}
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, &protocol.PersistenceError{Op: "read archive", Err: err}
	}
	return out, nil
}
