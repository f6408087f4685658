// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/lfjson"
)

func TestDocumentClearResetsRootAndStrings(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToObject()
	longVal := make([]byte, lfjson.MaxShort+8)
	copy(longVal, "interned-long-value-bytes")
	root.KeyOrInsert([]byte("k")).SetString(longVal)

	before := doc.Stats()
	require.Equal(t, 2, before.StringCount) // key + value

	doc.Clear()
	require.True(t, doc.Root().IsNull())

	after := doc.Stats()
	require.Equal(t, 1, after.StringCount, "Clear keeps interned keys, only releasing value strings")
}

func TestDocumentClearObjectsKeepsStrings(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToObject()
	root.KeyOrInsert([]byte("k")).SetInt64(1)

	doc.ClearObjects()
	require.True(t, doc.Root().IsNull())
	require.Equal(t, 1, doc.Pool().Count(), "ClearObjects must not touch interned keys")
}

func TestDocumentShrinkWithRehash(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToObject()
	for i := 0; i < 50; i++ {
		key := []byte{byte('a' + i%26), byte('0' + i/26)}
		root.KeyOrInsert(key).SetInt64(int64(i))
	}
	require.Equal(t, 50, root.Size())
	doc.Shrink(true)
	require.Equal(t, 50, root.Size())
	for i := 0; i < 50; i++ {
		key := []byte{byte('a' + i%26), byte('0' + i/26)}
		require.True(t, root.Has(key))
	}
}

func TestNewDocumentWithSharedPoolReportsCombinedStringCount(t *testing.T) {
	d1 := lfjson.NewDocument(nil)
	pool := d1.MakeSharedStringPool()
	d2 := lfjson.NewDocument(pool)

	r1 := d1.Root()
	r1.ToObject()
	r1.KeyOrInsert([]byte("shared-key-one")).SetInt64(1)

	r2 := d2.Root()
	r2.ToObject()
	r2.KeyOrInsert([]byte("shared-key-two")).SetInt64(2)

	require.Equal(t, pool.Count(), d1.Stats().StringCount)
	require.Equal(t, pool.Count(), d2.Stats().StringCount)
}
