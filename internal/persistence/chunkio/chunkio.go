package chunkio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"voxelstream.dev/internal/sim/chunk"
)

// File layout, little endian:
//
//	magic            [4]byte "VXCH"
//	generatorVersion uint32
//	sx, sy, sz       uint16 each
//	body             repeated (blockID uint16, runLen uint16)
//
// A homogeneous span longer than 65535 voxels is split into consecutive
// run records. Any header mismatch or malformed body reads as "no save";
// the caller regenerates the chunk.

var magic = [4]byte{'V', 'X', 'C', 'H'}

const maxRun = 0xFFFF

// SaveObserver is notified after a chunk file hits disk. Used by the
// sqlite save index; never consulted on the load path.
type SaveObserver interface {
	ChunkSaved(c chunk.Coord, generatorVersion uint32, bytes int)
}

type Store struct {
	dir     string
	version uint32

	obs SaveObserver
}

func NewStore(dataDir string, generatorVersion uint32) *Store {
	return &Store{
		dir:     filepath.Join(dataDir, "chunks"),
		version: generatorVersion,
	}
}

// SetObserver attaches a save observer. Pass nil to detach.
func (s *Store) SetObserver(obs SaveObserver) { s.obs = obs }

func (s *Store) path(c chunk.Coord) string {
	return filepath.Join(s.dir, fmt.Sprintf("c.%d.%d.vxc", c.CX, c.CZ))
}

// Save writes the chunk's block array to its file, replacing any
// previous save.
func (s *Store) Save(c *chunk.Chunk) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	s.writeHeader(&buf)
	encodeRuns(&buf, c.Blocks)

	if err := os.WriteFile(s.path(c.Coord), buf.Bytes(), 0o644); err != nil {
		return err
	}
	if s.obs != nil {
		s.obs.ChunkSaved(c.Coord, s.version, buf.Len())
	}
	return nil
}

// Load fills the chunk from its file. A missing file, a header that does
// not match this store's generator version or the chunk dimensions, or a
// body that does not decode to exactly one chunk volume all return false:
// the save is unusable and the caller should fall back to generation.
func (s *Store) Load(c *chunk.Chunk) bool {
	f, err := os.Open(s.path(c.Coord))
	if err != nil {
		return false
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if !s.readHeader(r) {
		return false
	}
	return decodeRuns(r, c.Blocks)
}

func (s *Store) writeHeader(buf *bytes.Buffer) {
	buf.Write(magic[:])
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], s.version)
	buf.Write(tmp[:])
	for _, d := range [3]uint16{chunk.SX, chunk.SY, chunk.SZ} {
		binary.LittleEndian.PutUint16(tmp[:2], d)
		buf.Write(tmp[:2])
	}
}

func (s *Store) readHeader(r io.Reader) bool {
	var hdr [14]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return false
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return false
	}
	if binary.LittleEndian.Uint32(hdr[4:8]) != s.version {
		return false
	}
	dims := [3]uint16{chunk.SX, chunk.SY, chunk.SZ}
	for i, want := range dims {
		if binary.LittleEndian.Uint16(hdr[8+2*i:]) != want {
			return false
		}
	}
	return true
}

func encodeRuns(buf *bytes.Buffer, blocks []uint16) {
	var rec [4]byte
	i := 0
	for i < len(blocks) {
		b := blocks[i]
		run := 1
		for i+run < len(blocks) && blocks[i+run] == b && run < maxRun {
			run++
		}
		binary.LittleEndian.PutUint16(rec[0:2], b)
		binary.LittleEndian.PutUint16(rec[2:4], uint16(run))
		buf.Write(rec[:])
		i += run
	}
}

func decodeRuns(r io.Reader, blocks []uint16) bool {
	var rec [4]byte
	n := 0
	for {
		_, err := io.ReadFull(r, rec[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return false
		}
		b := binary.LittleEndian.Uint16(rec[0:2])
		run := int(binary.LittleEndian.Uint16(rec[2:4]))
		if run == 0 || n+run > len(blocks) {
			return false
		}
		for k := 0; k < run; k++ {
			blocks[n+k] = b
		}
		n += run
	}
	return n == len(blocks)
}
