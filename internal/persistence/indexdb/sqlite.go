package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/chunk"
	"voxelstream.dev/internal/sim/tuning"
)

// SQLiteIndex is a secondary read-model over chunk saves: which
// coordinates have files, under which generator version, and when. The
// streaming core never reads it (loads go straight to the chunk files),
// so losing or disabling the index costs nothing but observability.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan saveRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type saveRow struct {
	CX      int
	CZ      int
	Version uint32
	Bytes   int
	SavedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Buffered: eviction bursts must not stall the main thread.
		ch: make(chan saveRow, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style workload; NORMAL durability is fine for
	// a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunk_saves (
			cx INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			generator_version INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			saves INTEGER NOT NULL DEFAULT 1,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (cx, cz)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_saves_saved_at ON chunk_saves(saved_at);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// ChunkSaved implements chunkio.SaveObserver. Drops the record when the
// writer falls behind; the chunk file itself is the source of truth.
func (s *SQLiteIndex) ChunkSaved(c chunk.Coord, generatorVersion uint32, bytes int) {
	if s == nil || s.closed.Load() {
		return
	}
	r := saveRow{
		CX:      c.CX,
		CZ:      c.CZ,
		Version: generatorVersion,
		Bytes:   bytes,
		SavedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- r:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		_, err := s.db.Exec(`INSERT INTO chunk_saves(cx,cz,generator_version,bytes,saved_at)
			VALUES(?,?,?,?,?)
			ON CONFLICT(cx,cz) DO UPDATE SET
				generator_version=excluded.generator_version,
				bytes=excluded.bytes,
				saves=saves+1,
				saved_at=excluded.saved_at`,
			r.CX, r.CZ, r.Version, r.Bytes, r.SavedAt)
		if err != nil {
			// Swallowed: index writes are best effort.
			continue
		}
	}
}

// UpsertCatalog stores the block palette and effective tuning so an
// operator can tell which configuration produced the saves on disk.
func (s *SQLiteIndex) UpsertCatalog(cat *block.Catalog, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if b, err := json.Marshal(cat.Palette); err == nil {
		if _, err := stmt.Exec("block_palette", cat.Digest, string(b), now); err != nil {
			return err
		}
	}
	if b, err := json.Marshal(tune); err == nil {
		sum := sha256.Sum256(b)
		if _, err := stmt.Exec("tuning", hex.EncodeToString(sum[:])[:16], string(b), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveStats summarizes the index for chunktool and ops queries.
type SaveStats struct {
	Chunks     int
	TotalBytes int64
	Versions   map[uint32]int
}

func (s *SQLiteIndex) Stats() (SaveStats, error) {
	st := SaveStats{Versions: map[uint32]int{}}
	rows, err := s.db.Query(`SELECT generator_version, COUNT(*), SUM(bytes) FROM chunk_saves GROUP BY generator_version`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var ver uint32
		var n int
		var bytes int64
		if err := rows.Scan(&ver, &n, &bytes); err != nil {
			return st, err
		}
		st.Versions[ver] = n
		st.Chunks += n
		st.TotalBytes += bytes
	}
	return st, rows.Err()
}
