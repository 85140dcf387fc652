package marked

import (
	"bytes"
	"testing"
)

func TestNormalTombstone(t *testing.T) {
	n := Normal(5, []byte("v"))
	if n.IsTombstone() {
		t.Fatal("Normal reported as tombstone")
	}
	data, ok := n.IntoData()
	if !ok || !bytes.Equal(data, []byte("v")) {
		t.Fatalf("IntoData = %q, %v", data, ok)
	}

	ts := Tombstone[[]byte](5)
	if !ts.IsTombstone() {
		t.Fatal("Tombstone not reported as tombstone")
	}
	if _, ok := ts.IntoData(); ok {
		t.Fatal("Tombstone.IntoData returned ok=true")
	}
}

func TestTombstoneDominatesAtEqualSeq(t *testing.T) {
	n := Normal(10, []byte("v"))
	ts := Tombstone[[]byte](10)
	if !ts.Newer(n) {
		t.Fatal("tombstone must dominate normal value at equal seq")
	}
	if n.Newer(ts) {
		t.Fatal("normal value must not dominate tombstone at equal seq")
	}
}

func TestHigherSeqWinsRegardlessOfKind(t *testing.T) {
	older := Tombstone[[]byte](5)
	newer := Normal(6, []byte("v"))
	if !newer.Newer(older) {
		t.Fatal("higher seq normal value must dominate lower seq tombstone")
	}
}

func TestOrderKeyCompareTotalOrder(t *testing.T) {
	cases := []OrderKey{
		{Seq: 1, Kind: KindNormal},
		{Seq: 1, Kind: KindTombstone},
		{Seq: 2, Kind: KindNormal},
	}
	for i := 0; i < len(cases)-1; i++ {
		if cases[i].Compare(cases[i+1]) >= 0 {
			t.Fatalf("case %d not less than case %d", i, i+1)
		}
	}
}

func TestMap(t *testing.T) {
	n := Normal(1, 41)
	mapped := Map(n, func(v int) int { return v + 1 })
	data, ok := mapped.IntoData()
	if !ok || data != 42 {
		t.Fatalf("Map result = %v, %v", data, ok)
	}

	ts := Tombstone[int](1)
	mappedTS := Map(ts, func(v int) int { return v + 1 })
	if !mappedTS.IsTombstone() {
		t.Fatal("Map must preserve tombstone-ness")
	}
}

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	cases := []SeqMarked[[]byte]{
		Normal[[]byte](1, []byte("hello")),
		Normal[[]byte](2, []byte("")),
		Tombstone[[]byte](3),
	}
	for _, m := range cases {
		enc := EncodeValue(m)
		got, n, err := DecodeValue(enc)
		if err != nil {
			t.Fatalf("DecodeValue: %v", err)
		}
		if n != len(enc) {
			t.Fatalf("consumed %d, want %d", n, len(enc))
		}
		if got.Seq() != m.Seq() || got.IsTombstone() != m.IsTombstone() {
			t.Fatalf("got %+v, want %+v", got, m)
		}
		gd, gok := got.IntoData()
		md, mok := m.IntoData()
		if gok != mok || !bytes.Equal(gd, md) {
			t.Fatalf("data mismatch: got %q/%v want %q/%v", gd, gok, md, mok)
		}
	}
}

func TestDecodeValueTruncated(t *testing.T) {
	m := Normal[[]byte](1, []byte("abc"))
	enc := EncodeValue(m)
	if _, _, err := DecodeValue(enc[:len(enc)-1]); err == nil {
		t.Fatal("expected error decoding truncated value")
	}
}
