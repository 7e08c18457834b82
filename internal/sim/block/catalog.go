package block

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Catalog maps block ids to their static attributes. Id 0 is always air.
// The palette order in blocks.json assigns the numeric ids, so the file
// is part of the world's save compatibility surface.
type Catalog struct {
	Palette []string
	Index   map[string]uint16
	Defs    []Def

	Digest string
}

type Def struct {
	ID       string `json:"id"`
	Solid    bool   `json:"solid"`
	Opaque   bool   `json:"opaque"`
	Emission uint8  `json:"emission,omitempty"`
	Plant    bool   `json:"plant,omitempty"`
	Target   bool   `json:"target,omitempty"`

	// Atlas tile, column/row into the texture atlas grid.
	TileU int `json:"tile_u"`
	TileV int `json:"tile_v"`
}

type blocksFile struct {
	Blocks []Def `json:"blocks"`
}

// Load reads blocks.json from the config directory.
func Load(configDir string) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(configDir, "blocks.json"))
	if err != nil {
		return nil, err
	}
	var bf blocksFile
	if err := json.Unmarshal(raw, &bf); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	return build(bf.Blocks)
}

func build(defs []Def) (*Catalog, error) {
	if len(defs) == 0 || defs[0].ID != "AIR" {
		return nil, fmt.Errorf("block palette must start with AIR")
	}
	if len(defs) > 1<<16 {
		return nil, fmt.Errorf("block palette too large: %d", len(defs))
	}
	c := &Catalog{
		Defs:  defs,
		Index: make(map[string]uint16, len(defs)),
	}
	h := sha256.New()
	for i, d := range defs {
		if _, dup := c.Index[d.ID]; dup {
			return nil, fmt.Errorf("duplicate block id %q", d.ID)
		}
		c.Index[d.ID] = uint16(i)
		c.Palette = append(c.Palette, d.ID)
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
	}
	c.Digest = hex.EncodeToString(h.Sum(nil))[:16]
	return c, nil
}

func (c *Catalog) def(id uint16) Def {
	if int(id) >= len(c.Defs) {
		return Def{}
	}
	return c.Defs[id]
}

func (c *Catalog) Solid(id uint16) bool     { return c.def(id).Solid }
func (c *Catalog) Opaque(id uint16) bool    { return c.def(id).Opaque }
func (c *Catalog) Emission(id uint16) uint8 { return c.def(id).Emission }
func (c *Catalog) Plant(id uint16) bool     { return c.def(id).Plant }
func (c *Catalog) Target(id uint16) bool    { return c.def(id).Target }

// Tile returns the atlas tile for a block id.
func (c *Catalog) Tile(id uint16) (u, v int) {
	d := c.def(id)
	return d.TileU, d.TileV
}

// Transmissive reports whether light passes through the voxel: everything
// except a solid opaque block transmits (glass, water, plants, air).
func (c *Catalog) Transmissive(id uint16) bool {
	d := c.def(id)
	return !(d.Solid && d.Opaque)
}

// MustID panics on an unknown block name. For tests and generators that
// are configured from the same palette file.
func (c *Catalog) MustID(name string) uint16 {
	id, ok := c.Index[name]
	if !ok {
		panic(fmt.Sprintf("unknown block %q", name))
	}
	return id
}

// Defaults returns the built-in palette used when no config dir is given.
func Defaults() *Catalog {
	c, err := build([]Def{
		{ID: "AIR"},
		{ID: "GRASS", Solid: true, Opaque: true, Target: true, TileU: 0, TileV: 0},
		{ID: "DIRT", Solid: true, Opaque: true, Target: true, TileU: 1, TileV: 0},
		{ID: "STONE", Solid: true, Opaque: true, Target: true, TileU: 2, TileV: 0},
		{ID: "SAND", Solid: true, Opaque: true, Target: true, TileU: 3, TileV: 0},
		{ID: "WATER", Solid: true, Target: false, TileU: 4, TileV: 0},
		{ID: "LOG", Solid: true, Opaque: true, Target: true, TileU: 5, TileV: 0},
		{ID: "LEAVES", Solid: true, Target: true, TileU: 6, TileV: 0},
		{ID: "GLASS", Solid: true, Target: true, TileU: 7, TileV: 0},
		{ID: "COAL_ORE", Solid: true, Opaque: true, Target: true, TileU: 0, TileV: 1},
		{ID: "IRON_ORE", Solid: true, Opaque: true, Target: true, TileU: 1, TileV: 1},
		{ID: "BEDROCK", Solid: true, Opaque: true, TileU: 2, TileV: 1},
		{ID: "TALL_GRASS", Plant: true, Target: true, TileU: 3, TileV: 1},
		{ID: "FLOWER", Plant: true, Target: true, TileU: 4, TileV: 1},
		{ID: "GLOWSTONE", Solid: true, Opaque: true, Emission: 14, Target: true, TileU: 5, TileV: 1},
		{ID: "FURNACE_LIT", Solid: true, Opaque: true, Emission: 13, Target: true, TileU: 6, TileV: 1},
	})
	if err != nil {
		panic(err)
	}
	return c
}
