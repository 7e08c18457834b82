package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Seed int64 `yaml:"seed"`

	LoadRadius   int `yaml:"load_radius"`
	UnloadRadius int `yaml:"unload_radius"`

	TickRateHz    int `yaml:"tick_rate_hz"`
	StatsEveryMs  int `yaml:"stats_every_ms"`
	AtlasGridSize int `yaml:"atlas_grid_size"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

func Defaults() Tuning {
	var t Tuning
	t.ApplyDefaults()
	return t
}

func (t *Tuning) ApplyDefaults() {
	if t.Seed == 0 {
		t.Seed = 1337
	}
	if t.LoadRadius <= 0 {
		t.LoadRadius = 6
	}
	// Unload strictly beyond load so chunks do not thrash at the rim.
	if t.UnloadRadius <= t.LoadRadius {
		t.UnloadRadius = t.LoadRadius + 2
	}
	if t.TickRateHz <= 0 {
		t.TickRateHz = 30
	}
	if t.StatsEveryMs <= 0 {
		t.StatsEveryMs = 1000
	}
	if t.AtlasGridSize <= 0 {
		t.AtlasGridSize = 16
	}
}
