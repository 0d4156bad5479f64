// Package strategydb keeps synthesized strategies in an embedded BadgerDB,
// keyed by the digest of the specification they were built for.
//
// Each entry holds the strategy in gr1c v1 text together with its state
// width, node count and storage time, so that a later patch or hot-swap
// can start from the stored automaton instead of re-solving.
package strategydb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/katalvlaran/gr1synth/automaton"
)

// Sentinel errors for the strategy repository.
var (
	// ErrNotFound reports a digest with no stored strategy.
	ErrNotFound = errors.New("strategydb: strategy not found")

	// ErrInvalidKey reports an empty or malformed digest.
	ErrInvalidKey = errors.New("strategydb: invalid digest")

	// ErrConfig reports an unusable Config.
	ErrConfig = errors.New("strategydb: invalid config")
)

const keyPrefix = "strategy/"

// Config holds configuration for a repository.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for tests.
	InMemory bool

	// SyncWrites makes every commit durable before it returns.
	SyncWrites bool

	// Logger receives BadgerDB's own log lines. Nil silences them.
	Logger *slog.Logger
}

// DefaultConfig returns a durable on-disk configuration at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// DB is a strategy repository. It is safe for concurrent use.
type DB struct {
	db *badger.DB
}

// Open opens or creates a repository.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("%w: path is required for a persistent database", ErrConfig)
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error { return d.db.Close() }

// Entry describes one stored strategy.
type Entry struct {
	Digest string    `json:"digest"`
	Width  int       `json:"width"`
	Nodes  int       `json:"nodes"`
	Stored time.Time `json:"stored"`
}

type record struct {
	Entry
	GR1C string `json:"gr1c"`
}

func key(digest string) ([]byte, error) {
	if digest == "" || strings.ContainsAny(digest, "/ \t\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, digest)
	}
	return []byte(keyPrefix + digest), nil
}

// Put stores s under digest, replacing any earlier strategy.
func (d *DB) Put(ctx context.Context, digest string, s *automaton.Store) error {
	k, err := key(digest)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var text bytes.Buffer
	if err := automaton.WriteGR1C(&text, s, automaton.GR1CVersion1); err != nil {
		return err
	}
	val, err := json.Marshal(record{
		Entry: Entry{Digest: digest, Width: s.Width(), Nodes: s.Len(), Stored: time.Now().UTC()},
		GR1C:  text.String(),
	})
	if err != nil {
		return fmt.Errorf("encode strategy %s: %w", digest, err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, val)
	})
}

// Get loads the strategy stored under digest.
func (d *DB) Get(ctx context.Context, digest string) (*automaton.Store, Entry, error) {
	k, err := key(digest)
	if err != nil {
		return nil, Entry{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Entry{}, err
	}
	var rec record
	err = d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, digest)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, Entry{}, err
	}
	s, _, err := automaton.ReadGR1C(strings.NewReader(rec.GR1C), rec.Width)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("decode strategy %s: %w", digest, err)
	}
	return s, rec.Entry, nil
}

// List returns the stored entries in key order.
func (d *DB) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec.Entry)
		}
		return nil
	})
	return out, err
}

// Delete removes the strategy stored under digest.
func (d *DB) Delete(ctx context.Context, digest string) error {
	k, err := key(digest)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, digest)
		} else if err != nil {
			return err
		}
		return txn.Delete(k)
	})
}
