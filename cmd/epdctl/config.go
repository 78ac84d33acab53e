// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/epaper/ssd1680"
	"github.com/GermanBionicSystems/epaper/ssd1680/framebuffer"
)

// PinConfig names the GPIO lines as known to gpioreg.
type PinConfig struct {
	DC string `yaml:"dc"`
	// CS is empty when the SPI port drives chip select.
	CS   string `yaml:"cs"`
	RST  string `yaml:"rst"`
	Busy string `yaml:"busy"`
}

// TimeoutConfig overrides the driver busy timeouts. Zero keeps the driver
// default.
type TimeoutConfig struct {
	Full     time.Duration `yaml:"full"`
	FullFast time.Duration `yaml:"full_fast"`
	Partial  time.Duration `yaml:"partial"`
	Gray     time.Duration `yaml:"gray"`
	Command  time.Duration `yaml:"command"`
}

// PreviewConfig controls the terminal preview.
type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	// Step keeps one pixel out of Step, see screen2d.Opts.
	Step int `yaml:"step"`
}

// Config is the epdctl configuration file.
type Config struct {
	// SPI is the port name passed to spireg.Open, empty for the first one.
	SPI string `yaml:"spi"`
	// SPIRead is opened a second time for register reads, which need the
	// MISO line. Empty disables reads.
	SPIRead string    `yaml:"spi_read"`
	Pins    PinConfig `yaml:"pins"`

	// Rotation is 0, 90, 180 or 270.
	Rotation int `yaml:"rotation"`
	// Depth is 1 (black/white) or 2 (four gray levels).
	Depth int `yaml:"depth"`

	PartialLimit int           `yaml:"partial_limit"`
	Timeouts     TimeoutConfig `yaml:"timeouts"`
	Preview      PreviewConfig `yaml:"preview"`
}

// DefaultConfig returns the configuration of a GDEY029T94 on the Waveshare
// HAT pinout.
func DefaultConfig() *Config {
	return &Config{
		Pins: PinConfig{
			DC:   "GPIO25",
			CS:   "GPIO8",
			RST:  "GPIO17",
			Busy: "GPIO24",
		},
		Rotation:     90,
		Depth:        1,
		PartialLimit: 10,
		Preview:      PreviewConfig{Step: 2},
	}
}

// Normalize fills in missing values.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Pins.DC == "" {
		c.Pins.DC = def.Pins.DC
	}
	if c.Pins.RST == "" {
		c.Pins.RST = def.Pins.RST
	}
	if c.Pins.Busy == "" {
		c.Pins.Busy = def.Pins.Busy
	}
	if c.Depth == 0 {
		c.Depth = def.Depth
	}
	if c.Preview.Step <= 0 {
		c.Preview.Step = 1
	}
}

// Opts returns the driver options described by c.
func (c *Config) Opts() (ssd1680.Opts, error) {
	opts := ssd1680.GDEY029T94
	switch r := framebuffer.Rotation(c.Rotation); r {
	case framebuffer.Rotate0, framebuffer.Rotate90, framebuffer.Rotate180, framebuffer.Rotate270:
		opts.Rotation = r
	default:
		return opts, fmt.Errorf("config: invalid rotation %d", c.Rotation)
	}
	switch d := framebuffer.Depth(c.Depth); d {
	case framebuffer.Mono, framebuffer.Gray4:
		opts.Depth = d
	default:
		return opts, fmt.Errorf("config: invalid depth %d", c.Depth)
	}
	if c.PartialLimit < 0 {
		return opts, fmt.Errorf("config: invalid partial_limit %d", c.PartialLimit)
	}
	opts.PartialLimit = c.PartialLimit
	opts.Timeouts = ssd1680.Timeouts{
		Full:     c.Timeouts.Full,
		FullFast: c.Timeouts.FullFast,
		Partial:  c.Timeouts.Partial,
		Gray:     c.Timeouts.Gray,
		Command:  c.Timeouts.Command,
	}
	return opts, nil
}

// Load reads the configuration at path. A missing file yields the default
// configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
