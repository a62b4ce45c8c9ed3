package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/osbuild/fdisk-script/pkg/datasizes"
	"github.com/osbuild/fdisk-script/pkg/disk"
)

// deviceConfig describes the synthetic device a script is parsed or
// applied against. All fields are optional; zero values fall back to the
// library defaults.
type deviceConfig struct {
	Device     string          `toml:"device"`
	Size       datasizes.Size  `toml:"size"`
	SectorSize uint64          `toml:"sector-size"`
	Grain      *datasizes.Size `toml:"grain"`
}

func loadDeviceConfig(path string) (*deviceConfig, error) {
	var cfg deviceConfig
	if path == "" {
		return &cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %w", err)
	}
	for _, k := range meta.Undecoded() {
		return nil, fmt.Errorf("unknown configuration key %q", k.String())
	}
	return &cfg, nil
}

// newContext builds a device context from the configuration plus any flag
// overrides.
func (cfg *deviceConfig) newContext() *disk.Context {
	size := cfg.Size.Uint64()
	if size == 0 {
		size = 10 * datasizes.GiB
	}

	dev := disk.NewContext(cfg.Device, size)
	if cfg.SectorSize != 0 {
		dev.SectorSize = cfg.SectorSize
		dev.TotalSectors = size / cfg.SectorSize
	}
	if cfg.Grain != nil {
		dev.GrainSize = cfg.Grain.Uint64()
	}
	return dev
}

func openScriptArg(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
