package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/protocol"
)

// stateDocVersion is bumped when the document layout changes. A document
// with an unrecognized version is treated as corrupt.
const stateDocVersion = 1

// StateDocument is the on-disk world snapshot. Unknown top-level keys in a
// loaded document are ignored, so older servers can read newer files.
type StateDocument struct {
	Characters map[string]protocol.AgentSnapshot `json:"characters"`
	Time       protocol.TimeInfo                 `json:"time"`
	Weather    protocol.WeatherInfo              `json:"weather"`
	Metadata   StateMetadata                     `json:"metadata"`
}

type StateMetadata struct {
	Version int `json:"version"`
}

// FileStore persists the world snapshot as a single JSON document. Writes
// go to a temp file first and rename into place, so a crash mid-write never
// leaves a truncated document behind.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a store writing to path. The parent directory is
// created on first write.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Persist writes the snapshot. Satisfies the engine's Persister.
func (fs *FileStore) Persist(snap protocol.WorldStateSnapshot) error {
	doc := StateDocument{
		Characters: snap.Characters,
		Time:       snap.Time,
		Weather:    snap.Weather,
		Metadata:   StateMetadata{Version: stateDocVersion},
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &protocol.PersistenceError{Op: "marshal state", Err: err}
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &protocol.PersistenceError{Op: "create state dir", Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".world_state-*.json")
	if err != nil {
		return &protocol.PersistenceError{Op: "create temp state", Err: err}
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &protocol.PersistenceError{Op: "write state", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &protocol.PersistenceError{Op: "close state", Err: err}
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return &protocol.PersistenceError{Op: "rename state", Err: err}
	}
	return nil
}

// Load reads the snapshot back. A missing file, unreadable JSON or an
// unknown document version all return ok=false: the caller starts from
// defaults instead of failing.
func (fs *FileStore) Load() (protocol.WorldStateSnapshot, bool) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) && fs.log != nil {
			fs.log.Warn(fmt.Sprintf("state file unreadable, starting fresh: %v", err))
		}
		return protocol.WorldStateSnapshot{}, false
	}

	var doc StateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		if fs.log != nil {
			fs.log.Warn(fmt.Sprintf("state file corrupt, starting fresh: %v", err))
		}
		return protocol.WorldStateSnapshot{}, false
	}
	if doc.Metadata.Version != stateDocVersion {
		if fs.log != nil {
			fs.log.Warn(fmt.Sprintf("state file version %d not supported, starting fresh", doc.Metadata.Version))
		}
		return protocol.WorldStateSnapshot{}, false
	}
	return protocol.WorldStateSnapshot{
		Characters: doc.Characters,
		Time:       doc.Time,
		Weather:    doc.Weather,
	}, true
}
