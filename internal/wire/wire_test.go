package wire

import (
	"bytes"
	"testing"
)

func TestUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 255, 65536, ^uint64(0)}
	for _, v := range cases {
		var buf bytes.Buffer
		if err := WriteUint64(&buf, v); err != nil {
			t.Fatalf("write %d: %v", v, err)
		}
		got, err := ReadUint64(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d: got %d", v, got)
		}
	}
}

func TestByteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteByte(&buf, 0x7f); err != nil {
		t.Fatal(err)
	}
	got, err := ReadByte(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x7f {
		t.Fatalf("got %x", got)
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	cases := [][]byte{nil, {}, {1, 2, 3}, bytes.Repeat([]byte{0xab}, 300)}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteVarBytes(&buf, c); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := ReadVarBytes(&buf, 4096)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !bytes.Equal(got, c) && !(len(got) == 0 && len(c) == 0) {
			t.Fatalf("round trip mismatch: got %v want %v", got, c)
		}
	}
}

func TestReadVarBytesTooLong(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarBytes(&buf, make([]byte, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadVarBytes(&buf, 10); err != ErrVarBytesTooLong {
		t.Fatalf("got %v, want ErrVarBytesTooLong", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := "0e5f08ed743d1c6d9745f590e9850fd5169d8be2"
	if err := WriteString(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadString(&buf, 128)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
