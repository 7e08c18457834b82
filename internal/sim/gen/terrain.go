package gen

import (
	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/chunk"
)

// Version tags save files; bump whenever generation output changes so
// stale saves are regenerated instead of mixing two generator eras.
const Version uint32 = 3

// Terrain fills chunks deterministically from seed + coordinate. It has
// no state beyond its configuration, so a chunk generated twice is
// byte-identical.
type Terrain struct {
	Seed int64

	SeaLevel   int
	BaseHeight int

	air       uint16
	grass     uint16
	dirt      uint16
	stone     uint16
	sand      uint16
	water     uint16
	bedrock   uint16
	coalOre   uint16
	ironOre   uint16
	tallGrass uint16
	flower    uint16
	glowstone uint16
}

func NewTerrain(seed int64, cat *block.Catalog) *Terrain {
	return &Terrain{
		Seed:       seed,
		SeaLevel:   40,
		BaseHeight: 48,

		air:       cat.MustID("AIR"),
		grass:     cat.MustID("GRASS"),
		dirt:      cat.MustID("DIRT"),
		stone:     cat.MustID("STONE"),
		sand:      cat.MustID("SAND"),
		water:     cat.MustID("WATER"),
		bedrock:   cat.MustID("BEDROCK"),
		coalOre:   cat.MustID("COAL_ORE"),
		ironOre:   cat.MustID("IRON_ORE"),
		tallGrass: cat.MustID("TALL_GRASS"),
		flower:    cat.MustID("FLOWER"),
		glowstone: cat.MustID("GLOWSTONE"),
	}
}

// Fill populates the chunk's block array in place.
func (t *Terrain) Fill(c *chunk.Chunk) {
	for z := 0; z < chunk.SZ; z++ {
		for x := 0; x < chunk.SX; x++ {
			wx := c.Coord.CX*chunk.SX + x
			wz := c.Coord.CZ*chunk.SZ + z
			h := t.heightAt(wx, wz)

			for y := 0; y < chunk.SY; y++ {
				var b uint16
				switch {
				case y == 0:
					b = t.bedrock
				case y < h-3:
					b = t.stone
					roll := hash3(t.Seed, wx, y, wz) % 1000
					if roll < 8 {
						b = t.coalOre
					} else if roll < 11 && y < 24 {
						b = t.ironOre
					} else if roll == 999 && y < 12 {
						b = t.glowstone
					}
				case y < h:
					b = t.dirt
				case y == h:
					if h <= t.SeaLevel+1 {
						b = t.sand
					} else {
						b = t.grass
					}
				case y <= t.SeaLevel:
					b = t.water
				default:
					b = t.air
				}
				c.Set(x, y, z, b)
			}

			// Sparse vegetation on grass, above water.
			if h > t.SeaLevel+1 && h+1 < chunk.SY {
				roll := hash2(t.Seed^0x5eed, wx, wz) % 100
				if roll < 6 {
					c.Set(x, h+1, z, t.tallGrass)
				} else if roll < 8 {
					c.Set(x, h+1, z, t.flower)
				}
			}
		}
	}
	c.ClearDirty()
}

// heightAt blends two octaves of smoothed lattice noise into a terrain
// height in [BaseHeight-16, BaseHeight+24).
func (t *Terrain) heightAt(wx, wz int) int {
	broad := valueNoise(t.Seed, wx, wz, 32)
	fine := valueNoise(t.Seed^0x77, wx, wz, 8)
	h := t.BaseHeight - 16 + int(broad*32+fine*8)
	if h < 1 {
		h = 1
	}
	if h > chunk.SY-8 {
		h = chunk.SY - 8
	}
	return h
}

// valueNoise is bilinear interpolation of per-lattice-point hashes,
// returning a value in [0,1).
func valueNoise(seed int64, x, z, cell int) float64 {
	cx := chunk.FloorDiv(x, cell)
	cz := chunk.FloorDiv(z, cell)
	fx := float64(chunk.Mod(x, cell)) / float64(cell)
	fz := float64(chunk.Mod(z, cell)) / float64(cell)

	v00 := unit(hash2(seed, cx, cz))
	v10 := unit(hash2(seed, cx+1, cz))
	v01 := unit(hash2(seed, cx, cz+1))
	v11 := unit(hash2(seed, cx+1, cz+1))

	// Smoothstep fade on both axes.
	fx = fx * fx * (3 - 2*fx)
	fz = fz * fz * (3 - 2*fz)

	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fz
}

func unit(h uint64) float64 {
	return float64(h>>11) / float64(1<<53)
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
