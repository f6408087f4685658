// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfjsonwalk serializes a document by driving any EventSink
// with a depth-first walk of a value tree — the reverse direction of
// lfjson.Handler, which builds a tree from the same event shape. A
// textual encoder, a second document's Handler, or any other sink
// consumer can be fed this way without lfjson needing to know about
// it.
package lfjsonwalk

import "code.hybscloud.com/lfjson"

// Walk visits v depth-first, emitting events into sink. pool resolves
// LongString and object-key references; pass the StringPool the
// document that owns v was built against.
func Walk(v lfjson.ConstValue, pool *lfjson.StringPool, sink lfjson.EventSink) {
	walkValue(v, pool, sink)
}

func walkValue(v lfjson.ConstValue, pool *lfjson.StringPool, sink lfjson.EventSink) {
	switch v.Tag() {
	case lfjson.TagNull:
		sink.PushNull()
	case lfjson.TagTrue:
		sink.PushTrue()
	case lfjson.TagFalse:
		sink.PushFalse()
	case lfjson.TagInt64:
		sink.PushInt64(v.Int64())
	case lfjson.TagUInt64:
		sink.PushUInt64(v.UInt64())
	case lfjson.TagDouble:
		sink.PushDouble(v.Double())
	case lfjson.TagShortString:
		sink.PushString(v.ShortString(), true, -1)
	case lfjson.TagLongString:
		ptr, length := v.LongStringRef()
		sink.PushString(pool.Bytes(ptr)[:length], true, -1)
	case lfjson.TagArray, lfjson.TagBArray, lfjson.TagIArray, lfjson.TagDArray:
		walkArray(v, pool, sink)
	case lfjson.TagObject:
		walkObject(v, pool, sink)
	}
}

func walkArray(v lfjson.ConstValue, pool *lfjson.StringPool, sink lfjson.EventSink) {
	sink.StartArray()
	switch v.Tag() {
	case lfjson.TagArray:
		elems := lfjson.ValueElems(v)
		for i := range elems {
			walkValue(&elems[i], pool, sink)
		}
	case lfjson.TagBArray:
		for _, b := range lfjson.BoolElems(v) {
			if b != 0 {
				sink.PushTrue()
			} else {
				sink.PushFalse()
			}
		}
	case lfjson.TagIArray:
		for _, n := range lfjson.Int64Elems(v) {
			sink.PushInt64(n)
		}
	case lfjson.TagDArray:
		for _, f := range lfjson.Float64Elems(v) {
			sink.PushDouble(f)
		}
	}
	sink.EndArray(v.Size())
}

func walkObject(v lfjson.ConstValue, pool *lfjson.StringPool, sink lfjson.EventSink) {
	sink.StartObject()
	members := lfjson.MemberElems(v)
	for i := range members {
		sink.PushKey(pool.Bytes(members[i].Key), true, -1)
		walkValue(&members[i].Val, pool, sink)
	}
	sink.EndObject(v.Size())
}
