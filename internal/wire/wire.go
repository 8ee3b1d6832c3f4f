// Package wire implements the canonical, deterministic binary encoding used
// to hash and sign ledger records. The encoding is part of the wire
// protocol: two implementations that disagree on byte layout will reject
// each other's blocks and transactions outright, so every primitive here is
// fixed-width or explicitly length-prefixed, never left to encoding/gob or
// JSON's platform- and version-dependent field ordering.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrVarBytesTooLong is returned when a length-prefixed field exceeds the
// caller-supplied maximum, guarding decoders against unbounded allocation
// from a malformed or hostile payload.
var ErrVarBytesTooLong = errors.New("wire: var bytes length exceeds maximum")

// WriteUint64 writes v as 8 big-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads 8 big-endian bytes into a uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteByte writes a single tag/flag byte.
func WriteByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// ReadByte reads a single tag/flag byte.
func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteVarBytes writes a uint32 length prefix followed by the raw bytes.
func WriteVarBytes(w io.Writer, b []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a uint32 length prefix followed by that many bytes.
// maxLen bounds the allocation; a payload claiming to exceed it is rejected.
func ReadVarBytes(r io.Reader, maxLen uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxLen {
		return nil, ErrVarBytesTooLong
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteString length-prefixes and writes a UTF-8 string.
func WriteString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

// ReadString reads a length-prefixed UTF-8 string.
func ReadString(r io.Reader, maxLen uint32) (string, error) {
	b, err := ReadVarBytes(r, maxLen)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
