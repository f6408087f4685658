// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfconfig loads the knobs that tune an lfjson document's
// allocators and string pool from a TOML file, so a process can pick
// chunk sizes and hashing strategy without recompiling.
package lfconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config mirrors the construction knobs exposed across lfjson's
// allocators and string pool, field for field.
type Config struct {
	ObjectChunkSize int    `toml:"object_chunk_size"`
	StringChunkSize int    `toml:"string_chunk_size"`
	Align           int    `toml:"align"`
	BaseAllocator   string `toml:"base_allocator"` // "heap" or "arena"

	AllowIntToDouble bool `toml:"allow_int_to_double"`

	InitialBuckets    int     `toml:"initial_buckets"`
	GrowthFactor      float64 `toml:"growth_factor"`
	MaxLoadFactor     float64 `toml:"max_load_factor"`
	BucketsPowerOfTwo bool    `toml:"buckets_power_of_two"`
	EnableXXHash      bool    `toml:"enable_xxhash"`

	InstrumentAllocators bool `toml:"instrument_allocators"`
}

// Default returns the knob values lfjson.NewDocument uses when given
// no explicit configuration: 16 buckets, growth factor 2.0, max load
// factor 1.5.
func Default() Config {
	return Config{
		ObjectChunkSize:      1 << 16,
		StringChunkSize:      1 << 16,
		Align:                8,
		BaseAllocator:        "heap",
		AllowIntToDouble:     true,
		InitialBuckets:       16,
		GrowthFactor:         2.0,
		MaxLoadFactor:        1.5,
		BucketsPowerOfTwo:    true,
		EnableXXHash:         true,
		InstrumentAllocators: false,
	}
}

// Load reads and decodes a Config from a TOML file at path, starting
// from Default so a file only needs to override the knobs it cares
// about.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
