package rotblstat

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := Stat{BlockNum: 5, KeyNum: 10, DataSize: 100, IndexSize: 200}
	enc, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestBlockAvgSize(t *testing.T) {
	s := Stat{BlockNum: 5, DataSize: 100}
	if got := s.BlockAvgSize(); got != 20 {
		t.Fatalf("BlockAvgSize() = %d, want 20", got)
	}
}

func TestBlockAvgSizeZeroBlocks(t *testing.T) {
	s := Stat{}
	if got := s.BlockAvgSize(); got != 0 {
		t.Fatalf("BlockAvgSize() = %d, want 0", got)
	}
}

func TestDecodeCorrupted(t *testing.T) {
	s := Stat{BlockNum: 1, KeyNum: 1, DataSize: 1, IndexSize: 1}
	enc, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	enc[len(enc)-1] ^= 0xff
	if _, err := Decode(enc); err == nil {
		t.Fatal("expected checksum error")
	}
}
