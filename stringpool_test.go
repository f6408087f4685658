// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import "testing"

func TestStringPoolDedup(t *testing.T) {
	p := NewStringPool(1<<12, 8, DefaultStringPoolConfig())
	a, err := p.Provide([]byte("hello world"), false, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Provide([]byte("hello world"), false, true)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("Provide() on identical bytes returned distinct entries %v != %v", a, b)
	}
	if p.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", p.Count())
	}
}

func TestStringPoolSharedAcrossDocuments(t *testing.T) {
	d1 := NewDocument(nil)
	pool := d1.MakeSharedStringPool()
	d2 := NewDocument(pool)

	r1 := d1.Root()
	r1.ToObject()
	key := make([]byte, MaxShort+10)
	copy(key, "a-long-shared-member-name-padded-out")
	r1.KeyOrInsert(key).SetInt64(1)

	r2 := d2.Root()
	r2.ToObject()
	r2.KeyOrInsert(key).SetInt64(2)

	if pool.Count() != 1 {
		t.Fatalf("two documents interning the same key should dedupe to 1 entry, got %d", pool.Count())
	}
}

func TestStringPoolReleaseValuesKeepsKeys(t *testing.T) {
	p := NewStringPool(1<<12, 8, DefaultStringPoolConfig())
	keyData := make([]byte, MaxShort+5)
	copy(keyData, "a-key-longer-than-inline")
	valData := make([]byte, MaxShort+5)
	copy(valData, "a-value-longer-than-inline")

	keyPtr, err := p.Provide(keyData, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Provide(valData, false, true); err != nil {
		t.Fatal(err)
	}
	if p.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", p.Count())
	}

	p.ReleaseValues()
	if p.Count() != 1 {
		t.Fatalf("ReleaseValues() left Count() = %d, want 1 (key survives)", p.Count())
	}
	if got, ok := p.Get(keyData); !ok || got != keyPtr {
		t.Fatalf("key entry did not survive ReleaseValues")
	}
	if _, ok := p.Get(valData); ok {
		t.Fatalf("non-key entry survived ReleaseValues")
	}
}

func TestStringPoolRehashAfterGrowth(t *testing.T) {
	p := NewStringPool(1<<14, 8, DefaultStringPoolConfig())
	for i := 0; i < 200; i++ {
		s := make([]byte, MaxShort+1+i%7)
		for j := range s {
			s[j] = byte('a' + (i+j)%26)
		}
		if _, err := p.Provide(s, false, true); err != nil {
			t.Fatalf("Provide #%d: %v", i, err)
		}
	}
	// i and i+182 (182 = lcm(7, 26)) build identical bytes, so the 18
	// calls for i >= 182 dedupe onto earlier entries.
	if p.Count() != 182 {
		t.Fatalf("Count() = %d, want 182", p.Count())
	}
	p.Rehash()
	// every entry must still be reachable after a manual rehash
	for i := 0; i < 200; i++ {
		s := make([]byte, MaxShort+1+i%7)
		for j := range s {
			s[j] = byte('a' + (i+j)%26)
		}
		if _, ok := p.Get(s); !ok {
			t.Fatalf("entry #%d missing after Rehash", i)
		}
	}
}
