package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blockfs.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Load() did not write %s: %v", path, err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, again); diff != "" {
		t.Errorf("reloaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockfs.yaml")
	data := "filesystem:\n  total_blocks: 2048\nshell:\n  echo: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	want.FileSystem.TotalBlocks = 2048
	want.Shell.Echo = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		errorIs error
	}{
		{name: "malformed yaml", data: "filesystem: [unclosed"},
		{name: "invalid geometry", data: "filesystem:\n  block_size: 100\n", errorIs: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "blockfs.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if tt.errorIs != nil && !errors.Is(err, tt.errorIs) {
				t.Errorf("Load() error = %v, want %v", err, tt.errorIs)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "largest arena", mutate: func(c *Config) { c.FileSystem.TotalBlocks = 65536 }},
		{name: "block size below minimum", mutate: func(c *Config) { c.FileSystem.BlockSize = 256 }, wantErr: true},
		{name: "unaligned block size", mutate: func(c *Config) { c.FileSystem.BlockSize = 1030 }, wantErr: true},
		{name: "too many blocks", mutate: func(c *Config) { c.FileSystem.TotalBlocks = 65537 }, wantErr: true},
		{name: "no room for root", mutate: func(c *Config) { c.FileSystem.TotalBlocks = 2 }, wantErr: true},
		{name: "missing node id", mutate: func(c *Config) { c.Log.NodeID = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
