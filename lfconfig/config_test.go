// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/lfjson/lfconfig"
)

func TestDefaultConfig(t *testing.T) {
	cfg := lfconfig.Default()
	require.Equal(t, 1<<16, cfg.ObjectChunkSize)
	require.Equal(t, "heap", cfg.BaseAllocator)
	require.True(t, cfg.EnableXXHash)
	require.True(t, cfg.AllowIntToDouble)
	require.Equal(t, 16, cfg.InitialBuckets)
	require.Equal(t, 2.0, cfg.GrowthFactor)
	require.Equal(t, 1.5, cfg.MaxLoadFactor)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lfjson.toml")
	contents := "object_chunk_size = 4096\nenable_xxhash = false\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := lfconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.ObjectChunkSize)
	require.False(t, cfg.EnableXXHash)
	// untouched keys keep their Default() value
	require.Equal(t, 1<<16, cfg.StringChunkSize)
	require.True(t, cfg.AllowIntToDouble)
	require.Equal(t, 1.5, cfg.MaxLoadFactor)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := lfconfig.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
