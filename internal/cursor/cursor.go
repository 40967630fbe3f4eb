// Package cursor encodes and decodes the opaque pagination tokens handed to clients.
//
// A token is the standard base64 encoding of four big-endian bytes: either a
// signed 32-bit value (row boundary id or shuffle resume offset) or the
// IEEE-754 bits of a 32-bit shuffle seed.
//
// Decoding is lenient about length. DecodeInt32 folds every decoded byte into
// the accumulator, so a payload that is not exactly four bytes yields a
// different, unchecked value instead of an error. Only malformed base64 fails.
// Callers must treat the decoded value as untrusted input.
package cursor

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrDecode is returned when a token is not valid base64.
var ErrDecode = errors.New("cursor: invalid token")

// EncodeInt32 returns the token for a row boundary id or shuffle offset.
func EncodeInt32(v int32) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return base64.StdEncoding.EncodeToString(buf[:])
}

// EncodeFloat32 returns the token for a shuffle seed.
func EncodeFloat32(f float32) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(f))
	return base64.StdEncoding.EncodeToString(buf[:])
}

// DecodeInt32 reverses EncodeInt32. Bytes are folded as acc = acc<<8 + b
// over the whole payload with int32 wrap-around; see the package comment.
func DecodeInt32(token string) (int32, error) {
	raw, err := decode(token)
	if err != nil {
		return 0, err
	}
	var acc int32
	for _, b := range raw {
		acc = acc<<8 + int32(b)
	}
	return acc, nil
}

// DecodeFloat32 reverses EncodeFloat32. At most the first four bytes are
// used; a shorter payload is zero-filled on the right.
func DecodeFloat32(token string) (float32, error) {
	raw, err := decode(token)
	if err != nil {
		return 0, err
	}
	var buf [4]byte
	copy(buf[:], raw)
	return math.Float32frombits(binary.BigEndian.Uint32(buf[:])), nil
}

func decode(token string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return raw, nil
}
