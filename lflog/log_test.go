// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lflog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/lfjson"
	"code.hybscloud.com/lfjson/lflog"
)

func TestLoggerAllocatorSnapshotFromDocumentStats(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToObject()
	root.KeyOrInsert([]byte("k")).SetInt64(1)

	stats := doc.Stats()

	logger := lflog.Nop()
	logger.AllocatorSnapshot("objects", stats.ChunkCount, stats.FallbackCount, stats.ValueBytes)
	logger.AllocatorSnapshot("strings", stats.ChunkCount, stats.FallbackCount, stats.StringBytes)
	logger.MalformedEvent("EndArray count mismatch observed with assertions disabled")
	require.NoError(t, logger.Sync())
}

func TestNewLoggerProduction(t *testing.T) {
	logger, err := lflog.New()
	require.NoError(t, err)
	require.NotNil(t, logger)
}
