package rotblmeta

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := New(5, "hello")
	enc, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Seq() != 5 || got.UserData() != "hello" {
		t.Fatalf("got %+v", got)
	}
}

func TestEncodeDecodeEmptyUserData(t *testing.T) {
	m := New(0, "")
	enc, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Seq() != 0 || got.UserData() != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeCorrupted(t *testing.T) {
	m := New(1, "x")
	enc, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	enc[len(enc)-1] ^= 0xff
	if _, err := Decode(enc); err == nil {
		t.Fatal("expected checksum error")
	}
}

func TestDecodeWrongMagic(t *testing.T) {
	m := New(1, "x")
	enc, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	enc[0] ^= 0xff
	if _, err := Decode(enc); err == nil {
		t.Fatal("expected magic mismatch error")
	}
}
