// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/lfjson"
)

func TestHandlerBuildsObjectWithShortAndLongStrings(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	h := doc.MakeHandler(true)

	h.StartObject()
	h.PushKey([]byte("count"), false, -1)
	h.PushInt64(3)
	h.PushKey([]byte("name"), false, -1)
	h.PushString([]byte("ok"), false, -1)
	long := make([]byte, lfjson.MaxShort+20)
	copy(long, "this string is deliberately longer than inline storage allows")
	h.PushKey([]byte("note"), false, -1)
	h.PushString(long, true, -1)
	h.EndObject(3)
	h.Finalize(true, true)

	root := doc.Root()
	require.True(t, root.IsObject())
	require.Equal(t, int64(3), root.Key([]byte("count")).Int64())
	require.Equal(t, "ok", string(root.Key([]byte("name")).String()))
	require.Equal(t, string(long), string(root.Key([]byte("note")).String()))
}

func TestHandlerChunkedStringAssembly(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	h := doc.MakeHandler(true)

	full := make([]byte, lfjson.MaxShort+30)
	for i := range full {
		full[i] = byte('a' + i%26)
	}
	first, rest := full[:10], full[10:]

	h.StartObject()
	h.PushKey([]byte("blob"), false, -1)
	h.PushString(first, false, len(full))
	h.PushStringChunk(rest)
	h.EndObject(1)
	h.Finalize(true, true)

	got := doc.Root().Key([]byte("blob")).String()
	require.Equal(t, string(full), string(got))
}

func TestHandlerArraySpecializationIntToDouble(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	h := doc.MakeHandler(true)

	h.StartArray()
	h.PushInt64(1)
	h.PushInt64(2)
	h.PushDouble(3.5)
	h.EndArray(3)
	h.Finalize(true, true)

	root := doc.Root()
	require.Equal(t, lfjson.TagDArray, root.Tag())
	require.Equal(t, 3, root.Size())
	require.Equal(t, 1.0, root.DoubleAt(0))
	require.Equal(t, 3.5, root.DoubleAt(2))
}

func TestHandlerArraySpecializationRejectsIntToDouble(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	h := doc.MakeHandler(false)

	h.StartArray()
	h.PushInt64(1)
	h.PushDouble(2.5)
	h.EndArray(2)
	h.Finalize(true, true)

	root := doc.Root()
	require.Equal(t, lfjson.TagArray, root.Tag(), "disallowing int->double must fall back to a generic array")
	require.Equal(t, int64(1), root.Index(0).Int64())
	require.Equal(t, 2.5, root.Index(1).Double())
}

func TestHandlerHeterogeneousMixForcesGenericArray(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	h := doc.MakeHandler(true)

	h.StartArray()
	h.PushTrue()
	h.PushFalse()
	h.PushString([]byte("x"), false, -1)
	h.EndArray(3)
	h.Finalize(true, true)

	root := doc.Root()
	require.Equal(t, lfjson.TagArray, root.Tag())
	require.Equal(t, 3, root.Size())
	var kinds []lfjson.Tag
	for _, v := range root.Elements() {
		kinds = append(kinds, v.Tag())
	}
	require.Equal(t, []lfjson.Tag{lfjson.TagTrue, lfjson.TagFalse, lfjson.TagShortString}, kinds)
}

func TestHandlerNestedContainers(t *testing.T) {
	doc := lfjson.NewDocument(nil)
	h := doc.MakeHandler(true)

	h.StartObject()
	h.PushKey([]byte("items"), false, -1)
	h.StartArray()
	h.StartObject()
	h.PushKey([]byte("id"), false, -1)
	h.PushInt64(1)
	h.EndObject(1)
	h.StartObject()
	h.PushKey([]byte("id"), false, -1)
	h.PushInt64(2)
	h.EndObject(1)
	h.EndArray(2)
	h.EndObject(1)
	h.Finalize(true, true)

	items := doc.Root().Key([]byte("items"))
	require.True(t, items.IsArray())
	require.Equal(t, 2, items.Size())
	require.Equal(t, int64(1), items.Index(0).Key([]byte("id")).Int64())
	require.Equal(t, int64(2), items.Index(1).Key([]byte("id")).Int64())
}
