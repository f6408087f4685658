// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjsonwalk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/lfjson"
	"code.hybscloud.com/lfjson/lfjsonwalk"
)

func TestWalkRoundTripsThroughAnotherHandler(t *testing.T) {
	src := lfjson.NewDocument(nil)
	h := src.MakeHandler(true)
	h.StartObject()
	h.PushKey([]byte("name"), false, -1)
	h.PushString([]byte("alice"), false, -1)
	h.PushKey([]byte("nums"), false, -1)
	h.StartArray()
	h.PushInt64(1)
	h.PushInt64(2)
	h.PushInt64(3)
	h.EndArray(3)
	h.EndObject(2)
	h.Finalize(true, true)

	dst := lfjson.NewDocument(nil)
	sink := dst.MakeHandler(true)
	lfjsonwalk.Walk(src.CRoot(), src.Pool(), sink)
	sink.Finalize(true, true)

	root := dst.Root()
	require.True(t, root.IsObject())
	require.Equal(t, "alice", string(root.Key([]byte("name")).String()))
	nums := root.Key([]byte("nums"))
	require.Equal(t, lfjson.TagIArray, nums.Tag())
	require.Equal(t, int64(1), nums.Int64At(0))
	require.Equal(t, int64(3), nums.Int64At(2))
}
