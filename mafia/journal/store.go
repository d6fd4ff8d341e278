// Package journal keeps an append-only operator log of room lifecycle
// events in PebbleDB. It is never read back into game state.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/portal-mafia/mafia/game"
)

// Entry is one persisted journal line.
type Entry struct {
	TS     int64  `json:"ts"`
	Room   string `json:"room"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// Store appends entries under 8-byte big-endian sequence keys.
type Store struct {
	db   *pebble.DB
	mu   sync.Mutex
	next uint64
}

// Open opens or creates the journal at dir. A nil fs uses the local disk.
func Open(dir string, fs vfs.FS) (*Store, error) {
	if fs == nil {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		fs = vfs.Default
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{FS: fs})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	s := &Store{db: db}
	it, err := db.NewIter(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	if it.Last() && len(it.Key()) == 8 {
		s.next = binary.BigEndian.Uint64(it.Key()) + 1
	}
	if err := it.Close(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return s, nil
}

// Append writes e without waiting for fsync; the journal is advisory and
// runs on the game loop.
func (s *Store) Append(e Entry) error {
	if s == nil {
		return nil
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, s.next)
	if err := s.db.Set(key, val, pebble.NoSync); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	s.next++
	return nil
}

// Record implements game.Journal. Write failures are logged, not returned.
func (s *Store) Record(ev game.JournalEvent) {
	err := s.Append(Entry{
		TS:     ev.At.UnixMilli(),
		Room:   ev.Room,
		Kind:   ev.Kind,
		Detail: ev.Detail,
	})
	if err != nil {
		log.Warn().Err(err).Str("room", ev.Room).Str("kind", ev.Kind).Msg("[mafia] journal write failed")
	}
}

// LoadRecent returns up to limit of the newest entries, oldest first.
// A limit <= 0 returns everything. Undecodable values are skipped.
func (s *Store) LoadRecent(limit int) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	defer func() { _ = it.Close() }()

	var out []Entry
	for valid := it.Last(); valid; valid = it.Prev() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var e Entry
		if err := json.Unmarshal(it.Value(), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
