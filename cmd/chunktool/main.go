package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"voxelstream.dev/internal/persistence/indexdb"
	"voxelstream.dev/internal/sim/gen"
)

// chunktool inspects chunk save files and the sqlite save index without
// touching a running world.
func main() {
	var (
		file    = flag.String("file", "", "chunk file to inspect")
		version = flag.Uint("version", uint(gen.Version), "expected generator version")
		index   = flag.String("index", "", "sqlite save index to summarize")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[chunktool] ", 0)

	switch {
	case *file != "":
		if err := inspect(*file, uint32(*version)); err != nil {
			logger.Fatalf("inspect %s: %v", *file, err)
		}
	case *index != "":
		if err := summarize(*index); err != nil {
			logger.Fatalf("summarize %s: %v", *index, err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func inspect(path string, wantVersion uint32) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(raw) < 14 {
		return fmt.Errorf("short file: %d bytes", len(raw))
	}
	magic := string(raw[:4])
	ver := binary.LittleEndian.Uint32(raw[4:8])
	sx := binary.LittleEndian.Uint16(raw[8:10])
	sy := binary.LittleEndian.Uint16(raw[10:12])
	sz := binary.LittleEndian.Uint16(raw[12:14])

	fmt.Printf("magic=%q generator_version=%d dims=%dx%dx%d\n", magic, ver, sx, sy, sz)
	if magic != "VXCH" {
		fmt.Println("verdict: bad magic, readers treat this as no save")
		return nil
	}
	if ver != wantVersion {
		fmt.Printf("verdict: version mismatch (want %d), readers regenerate\n", wantVersion)
	}

	body := raw[14:]
	if len(body)%4 != 0 {
		return fmt.Errorf("truncated RLE body: %d bytes", len(body))
	}
	runs := 0
	voxels := 0
	perBlock := map[uint16]int{}
	longest := 0
	for i := 0; i < len(body); i += 4 {
		id := binary.LittleEndian.Uint16(body[i : i+2])
		run := int(binary.LittleEndian.Uint16(body[i+2 : i+4]))
		runs++
		voxels += run
		perBlock[id] += run
		if run > longest {
			longest = run
		}
	}
	want := int(sx) * int(sy) * int(sz)
	fmt.Printf("runs=%d voxels=%d/%d longest_run=%d distinct_blocks=%d\n",
		runs, voxels, want, longest, len(perBlock))
	if voxels != want {
		fmt.Println("verdict: volume mismatch, readers treat this as no save")
	}
	return nil
}

func summarize(path string) error {
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	st, err := idx.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("chunks=%d total_bytes=%d\n", st.Chunks, st.TotalBytes)
	for ver, n := range st.Versions {
		fmt.Printf("  generator_version=%d chunks=%d\n", ver, n)
	}
	return nil
}
