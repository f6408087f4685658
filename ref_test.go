// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/lfjson"
)

func TestRefKeyRenameRebindsLookup(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToObject()
	root.KeyOrInsert([]byte("old-name")).SetInt64(42)

	require.True(t, root.Has([]byte("old-name")))
	val := root.Key([]byte("old-name")).Int64()

	require.True(t, root.EraseKey([]byte("old-name")))
	root.KeyOrInsert([]byte("new-name")).SetInt64(val)

	require.False(t, root.Has([]byte("old-name")))
	require.True(t, root.Has([]byte("new-name")))
	require.Equal(t, int64(42), root.Key([]byte("new-name")).Int64())
}

func TestRefKeyOrInsertRetagsNullRoot(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	require.True(t, root.IsNull())

	root.KeyOrInsert([]byte("count")).SetInt64(4)

	require.True(t, root.IsObject())
	require.Equal(t, int64(4), root.Key([]byte("count")).Int64())
}

func TestRefKeyRetagsNullRootWithoutInserting(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()

	require.Nil(t, root.Key([]byte("missing")))
	require.True(t, root.IsObject())
	require.Equal(t, 0, root.Size())
}

func TestRefPushBackAndPopBack(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToArray()
	root.PushBackElem().SetInt64(1)
	root.PushBackElem().SetString([]byte("two"))
	require.Equal(t, 2, root.Size())

	root.PopBack()
	require.Equal(t, 1, root.Size())
	require.Equal(t, int64(1), root.Index(0).Int64())
}

func TestRefIndexAutoExtendFillsNull(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToArray()
	root.Index(3).SetInt64(99)
	require.Equal(t, 4, root.Size())
	require.True(t, root.Index(0).IsNull())
	require.True(t, root.Index(1).IsNull())
	require.True(t, root.Index(2).IsNull())
	require.Equal(t, int64(99), root.Index(3).Int64())
}

func TestRefSwapRejectsNestedContainment(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToArray()
	child := root.PushBackElem()
	child.SetInt64(7)

	err := root.Swap(child)
	require.ErrorIs(t, err, lfjson.ErrNestedSwap)
}

func TestRefSwapExchangesIndependentValues(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToArray()
	a := root.PushBackElem()
	a.SetInt64(1)
	b := root.PushBackElem()
	b.SetInt64(2)

	require.NoError(t, root.Index(0).Swap(root.Index(1)))
	require.Equal(t, int64(2), root.Index(0).Int64())
	require.Equal(t, int64(1), root.Index(1).Int64())
}

func TestRefPromoteIArrayToDArray(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToIArray()
	require.NoError(t, root.PushBackInt64Elem(1))
	require.NoError(t, root.PushBackInt64Elem(2))

	root.PromoteToDArray()
	require.Equal(t, lfjson.TagDArray, root.Tag())
	require.Equal(t, 1.0, root.DoubleAt(0))
	require.Equal(t, 2.0, root.DoubleAt(1))
}

func TestRefContainerClearFreesNestedContent(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	root := doc.Root()
	root.ToArray()
	nested := root.PushBackElem()
	nested.ToObject()
	nested.KeyOrInsert([]byte("a")).SetInt64(1)

	root.ContainerClear()
	require.Equal(t, 0, root.Size())
}
