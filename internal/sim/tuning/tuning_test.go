package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Seed != 1337 || d.LoadRadius != 6 || d.UnloadRadius != 8 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.TickRateHz != 30 || d.StatsEveryMs != 1000 || d.AtlasGridSize != 16 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "seed: 99\nload_radius: 3\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.Seed != 99 || tn.LoadRadius != 3 {
		t.Fatalf("file values not applied: %+v", tn)
	}
	if tn.UnloadRadius != 5 {
		t.Fatalf("unload radius not derived from load radius: %+v", tn)
	}
	if tn.TickRateHz != 30 {
		t.Fatalf("default not applied: %+v", tn)
	}
}

func TestLoad_UnloadNeverInsideLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "load_radius: 10\nunload_radius: 4\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.UnloadRadius <= tn.LoadRadius {
		t.Fatalf("unload radius inside load radius: %+v", tn)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
