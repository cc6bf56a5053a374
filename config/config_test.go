package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != Default().ListenAddr {
		t.Fatalf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
}

func TestLoadParsesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"listen_addr":":9090","table_capacity":500,"pin_workers":true}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.TableCapacity != 500 {
		t.Fatalf("TableCapacity = %d, want 500", cfg.TableCapacity)
	}
	if !cfg.PinWorkers {
		t.Fatal("PinWorkers = false, want true")
	}
	// Unset fields keep their Default() seed.
	if cfg.MaxThreads != Default().MaxThreads {
		t.Fatalf("MaxThreads = %d, want default", cfg.MaxThreads)
	}
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"listen_addr":":9090"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("LFKV_LISTEN_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("ListenAddr = %q, want :7070 (env override)", cfg.ListenAddr)
	}
}
