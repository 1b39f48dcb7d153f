package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
	"github.com/AnishMulay/blockfs/internal/log_service"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBlockSize   = 1024
	DefaultTotalBlocks = 40 * 1024
)

type FileSystemConfig struct {
	BlockSize   int `yaml:"block_size"`
	TotalBlocks int `yaml:"total_blocks"`
}

type LogConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	NodeID string `yaml:"node_id"`
}

type ShellConfig struct {
	Prompt string `yaml:"prompt"`
	// Echo repeats each command before its output.
	Echo bool `yaml:"echo"`
	// Verbose appends the reason to failure lines.
	Verbose bool `yaml:"verbose"`
}

type Config struct {
	FileSystem FileSystemConfig `yaml:"filesystem"`
	Log        LogConfig        `yaml:"log"`
	Shell      ShellConfig      `yaml:"shell"`
}

func Default() *Config {
	return &Config{
		FileSystem: FileSystemConfig{
			BlockSize:   DefaultBlockSize,
			TotalBlocks: DefaultTotalBlocks,
		},
		Log: LogConfig{
			Dir:    "./run/logs",
			Level:  log_service.InfoLevel,
			NodeID: "blockfs",
		},
	}
}

// Load reads the YAML file at path. A missing file is created with the
// defaults. Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	fs := c.FileSystem
	if fs.BlockSize < descriptor.MinBlockSize || fs.BlockSize%8 != 0 || fs.BlockSize > block_service.MaxBlocks {
		return fmt.Errorf("%w: block_size %d must be a multiple of 8 in [%d, %d]",
			ErrInvalidConfig, fs.BlockSize, descriptor.MinBlockSize, block_service.MaxBlocks)
	}
	if fs.TotalBlocks > block_service.MaxBlocks {
		return fmt.Errorf("%w: total_blocks %d exceeds %d", ErrInvalidConfig, fs.TotalBlocks, block_service.MaxBlocks)
	}
	// Superblock, bitmap and at least the root.
	if minBlocks := 1 + block_service.BitmapBlocks(fs.BlockSize, fs.TotalBlocks) + 1; fs.TotalBlocks < minBlocks {
		return fmt.Errorf("%w: total_blocks %d leaves no room for the root (need %d)", ErrInvalidConfig, fs.TotalBlocks, minBlocks)
	}
	if c.Log.NodeID == "" {
		return fmt.Errorf("%w: log.node_id is required", ErrInvalidConfig)
	}
	return nil
}
