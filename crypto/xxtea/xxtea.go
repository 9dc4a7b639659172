// Package xxtea implements the XXTEA block cipher.
//
// XXTEA operates on whole buffers of 32-bit words with a 128-bit key and a
// 4-byte block size. It has no IV and no external dependency, which makes it
// the always-available fallback of the cipher facade regardless of which
// back-ends a build carries.
package xxtea

import (
	"encoding/binary"
	"errors"
)

const (
	// BlockSize is the cipher block size in bytes.
	BlockSize = 4
	// KeySize is the key size in bytes.
	KeySize = 16

	delta = 0x9e3779b9
)

// ErrShortBuffer is returned when the output buffer cannot hold the
// word-padded result.
var ErrShortBuffer = errors.New("xxtea: output buffer too small")

// Key is an expanded XXTEA key: four little-endian 32-bit words.
type Key [4]uint32

// NewKey expands a secret into an XXTEA key. Secrets shorter than KeySize
// are zero-extended; longer ones are truncated.
func NewKey(secret []byte) Key {
	var buf [KeySize]byte
	copy(buf[:], secret)

	var k Key
	for i := range k {
		k[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return k
}

// Encrypt encrypts src into dst and returns the number of bytes written.
// The input is zero-padded up to a multiple of BlockSize, so dst must hold
// at least that many bytes. A single-word input passes through unchanged;
// the cipher needs at least two words to mix.
func (k *Key) Encrypt(dst, src []byte) (int, error) {
	n := (len(src) + BlockSize - 1) / BlockSize
	if len(dst) < n*BlockSize {
		return 0, ErrShortBuffer
	}
	if n == 0 {
		return 0, nil
	}

	v := toWords(src, n)
	if n >= 2 {
		encryptWords(v, k)
	}
	fromWords(dst, v)
	return n * BlockSize, nil
}

// Decrypt decrypts src into dst and returns the number of bytes written.
// src must be a multiple of BlockSize, the way Encrypt produced it.
func (k *Key) Decrypt(dst, src []byte) (int, error) {
	n := (len(src) + BlockSize - 1) / BlockSize
	if len(dst) < n*BlockSize {
		return 0, ErrShortBuffer
	}
	if n == 0 {
		return 0, nil
	}

	v := toWords(src, n)
	if n >= 2 {
		decryptWords(v, k)
	}
	fromWords(dst, v)
	return n * BlockSize, nil
}

func toWords(src []byte, n int) []uint32 {
	v := make([]uint32, n)
	for i := 0; i < len(src); i++ {
		v[i/4] |= uint32(src[i]) << uint((i%4)*8)
	}
	return v
}

func fromWords(dst []byte, v []uint32) {
	for i, w := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], w)
	}
}

func mx(sum, y, z uint32, p, e int, k *Key) uint32 {
	return ((z>>5 ^ y<<2) + (y>>3 ^ z<<4)) ^ ((sum ^ y) + (k[(p&3)^e] ^ z))
}

func encryptWords(v []uint32, k *Key) {
	n := len(v) - 1
	z := v[n]
	q := 6 + 52/(n+1)

	var sum uint32
	for ; q > 0; q-- {
		sum += delta
		e := int((sum >> 2) & 3)
		var y uint32
		for p := 0; p < n; p++ {
			y = v[p+1]
			v[p] += mx(sum, y, z, p, e, k)
			z = v[p]
		}
		y = v[0]
		v[n] += mx(sum, y, z, n, e, k)
		z = v[n]
	}
}

func decryptWords(v []uint32, k *Key) {
	n := len(v) - 1
	y := v[0]
	q := 6 + 52/(n+1)

	for sum := uint32(q) * delta; sum != 0; sum -= delta {
		e := int((sum >> 2) & 3)
		var z uint32
		for p := n; p > 0; p-- {
			z = v[p-1]
			v[p] -= mx(sum, y, z, p, e, k)
			y = v[p]
		}
		z = v[n]
		v[0] -= mx(sum, y, z, 0, e, k)
		y = v[0]
	}
}
