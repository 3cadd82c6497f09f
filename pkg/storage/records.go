// Package storage keeps named blobs ("records") in a local SQLite database.
// It is the durable backing for state that a browser would keep in local
// storage: one record per name, overwritten as a whole on every write.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/reposearch/pkg/db"
	"github.com/rubiojr/reposearch/pkg/log"
)

// Record value encodings stored next to each value.
const (
	EncodingZstd     = "zstd"
	EncodingIdentity = "identity"
)

var logger = log.ForService("storage")

// RecordStorage is a SQLite backed name → value store.
type RecordStorage struct {
	db       *sql.DB
	encoding string
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// Option configures a RecordStorage.
type Option func(*RecordStorage)

// WithoutCompression stores new values uncompressed. Existing compressed
// values remain readable.
func WithoutCompression() Option {
	return func(s *RecordStorage) { s.encoding = EncodingIdentity }
}

// Open opens (creating if needed) the database at dbPath and applies the
// schema migrations.
func Open(dbPath string, opts ...Option) (*RecordStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Pragmas are per connection.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		sqlDB.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	s := &RecordStorage{
		db:       sqlDB,
		encoding: EncodingZstd,
		encoder:  encoder,
		decoder:  decoder,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Debugf("opened %s (encoding %s)", dbPath, s.encoding)
	return s, nil
}

// Close releases the database and codecs.
func (s *RecordStorage) Close() error {
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		logger.Warnf("failed to close zstd encoder: %v", err)
	}
	return s.db.Close()
}

// GetDB returns the underlying connection, for migrations and tests.
func (s *RecordStorage) GetDB() *sql.DB {
	return s.db
}

// Get returns the value stored under name. ok is false when there is none.
func (s *RecordStorage) Get(name string) (value []byte, ok bool, err error) {
	var raw []byte
	var encoding string
	err = s.db.QueryRow("SELECT value, encoding FROM records WHERE name = ?", name).Scan(&raw, &encoding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading record %s: %w", name, err)
	}

	value, err = s.decode(encoding, raw)
	if err != nil {
		return nil, false, fmt.Errorf("decoding record %s: %w", name, err)
	}
	return value, true, nil
}

// Put replaces the value stored under name.
func (s *RecordStorage) Put(name string, value []byte) error {
	encoded := s.encode(value)
	_, err := s.db.Exec(`
		INSERT INTO records (name, value, encoding, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			encoding = excluded.encoding,
			updated_at = excluded.updated_at
	`, name, encoded, s.encoding)
	if err != nil {
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	logger.Debugf("wrote record %s (%d bytes, %d stored)", name, len(value), len(encoded))
	return nil
}

// Delete removes the record. Deleting a missing record is not an error.
func (s *RecordStorage) Delete(name string) error {
	if _, err := s.db.Exec("DELETE FROM records WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

// Names lists stored record names in alphabetical order.
func (s *RecordStorage) Names() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM records ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning record name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *RecordStorage) encode(value []byte) []byte {
	if s.encoding == EncodingIdentity {
		return value
	}
	return s.encoder.EncodeAll(value, make([]byte, 0, len(value)/2))
}

func (s *RecordStorage) decode(encoding string, raw []byte) ([]byte, error) {
	switch encoding {
	case EncodingIdentity:
		return raw, nil
	case EncodingZstd:
		return s.decoder.DecodeAll(raw, nil)
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}
