// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfjson is an in-memory document model for JSON-shaped trees,
// engineered for minimal memory footprint and cache locality rather
// than for parsing.
//
// Every Value fits in 16 bytes (12 on a 32-bit GOARCH), every Member
// (key+value) in 24 bytes (16 on 32-bit). Short strings live inline
// in the value cell; long strings are deduplicated in a StringPool.
// Homogeneous arrays of bool, int64 or float64 are stored as packed
// buffers (BArray, IArray, DArray) instead of per-element tagged
// values.
//
// # Building a document
//
// Documents are built incrementally through a Handler, which presents
// a small event API matching JSON tokens (startObject, pushKey,
// pushInt64, endArray, ...). A parser or any other event producer
// drives the Handler; this package does not tokenize text itself.
//
//	doc := lfjson.NewDocument(nil)
//	h := doc.MakeHandler(true)
//	h.StartObject()
//	h.PushKey([]byte("count"), false, -1)
//	h.PushInt64(3)
//	h.EndObject(1)
//	h.Finalize(true, true)
//
// # Editing a document
//
// Once built, Ref is the cursor type used to read and mutate a
// document in place:
//
//	root := doc.Root()
//	root.KeyOrInsert([]byte("count")).SetInt64(4)
//
// # Allocation model
//
// A Document owns a NominalSlab of its own (the object allocator) and
// holds a reference to a StringPool (the string allocator), which may
// be shared across multiple documents via Document.MakeSharedStringPool.
// Both allocators grow in fixed-size chunks and recycle freed regions
// through an intra-chunk freelist; see NominalSlab and CompactSlab for
// the allocation protocol.
//
// # Concurrency
//
// This package is single-threaded by contract: no operation blocks,
// yields, or synchronizes, and a Document (or a StringPool shared by
// several documents) must never be mutated from more than one
// goroutine at a time.
package lfjson
