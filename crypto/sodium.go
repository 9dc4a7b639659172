//go:build !no_sodium

package crypto

import (
	stdcipher "crypto/cipher"
	"encoding/binary"

	"github.com/aead/chacha20/chacha"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/poly1305"
	"golang.org/x/crypto/salsa20/salsa"
)

// The sodium-style adapter services the stream and AEAD methods with
// value-typed contexts: the session's key buffer is the whole state. Stream
// ciphers take their IV as an 8-byte little-endian block counter followed by
// the algorithm nonce; AEAD IVs are the raw nonce.

// sodiumEnabled reports whether this build carries the adapter.
const sodiumEnabled = true

const (
	sodiumCounterSize = 8

	chachaRounds = 20
)

// sodiumIVSize returns counter-prefixed nonce sizes for stream methods and
// the plain nonce size for AEAD methods.
func sodiumIVSize(m method) int {
	switch m {
	case methodSodiumChacha20:
		return sodiumCounterSize + chacha.NonceSize
	case methodSodiumChacha20IETF:
		return sodiumCounterSize + chacha.INonceSize
	case methodSodiumXChacha20:
		return sodiumCounterSize + chacha.XNonceSize
	case methodSodiumSalsa20:
		return sodiumCounterSize + 8
	case methodSodiumXSalsa20:
		return sodiumCounterSize + 24
	case methodSodiumChacha20Poly1305:
		return 8
	case methodSodiumChacha20Poly1305IETF:
		return chacha20poly1305.NonceSize
	case methodSodiumXChacha20Poly1305IETF:
		return chacha20poly1305.NonceSizeX
	}
	return 0
}

func sodiumKeyBits(m method) int {
	if isSodiumStream(m) || isSodiumAEAD(m) {
		return sodiumKeyBytes * 8
	}
	return 0
}

func sodiumTagSize(m method) int {
	if isSodiumAEAD(m) {
		return poly1305.TagSize
	}
	return 0
}

// sodiumStreamXOR applies the method's keystream to src with the block
// counter and nonce unpacked from iv.
func sodiumStreamXOR(m method, dst, src, iv []byte, key *[sodiumKeyBytes]byte) error {
	counter := binary.LittleEndian.Uint64(iv[:sodiumCounterSize])
	nonce := iv[sodiumCounterSize:]

	switch m {
	case methodSodiumChacha20, methodSodiumChacha20IETF, methodSodiumXChacha20:
		s, err := chacha.NewCipher(nonce, key[:], chachaRounds)
		if err != nil {
			return err
		}
		s.SetCounter(counter)
		s.XORKeyStream(dst, src)
		return nil

	case methodSodiumSalsa20:
		var block [16]byte
		copy(block[:8], nonce)
		binary.LittleEndian.PutUint64(block[8:], counter)
		salsa.XORKeyStream(dst, src, &block, key)
		return nil

	case methodSodiumXSalsa20:
		var hNonce [16]byte
		copy(hNonce[:], nonce[:16])
		var subKey [sodiumKeyBytes]byte
		salsa.HSalsa20(&subKey, &hNonce, key, &salsa.Sigma)

		var block [16]byte
		copy(block[:8], nonce[16:24])
		binary.LittleEndian.PutUint64(block[8:], counter)
		salsa.XORKeyStream(dst, src, &block, &subKey)
		return nil
	}
	return ErrSodiumOperation
}

// sodiumAEADSeal encrypts src into dst and writes the detached tag.
func sodiumAEADSeal(m method, dst, tag, src, ad, nonce []byte, key *[sodiumKeyBytes]byte) error {
	switch m {
	case methodSodiumChacha20Poly1305:
		return draftChacha20Poly1305Seal(dst, tag, src, ad, nonce, key)
	case methodSodiumChacha20Poly1305IETF, methodSodiumXChacha20Poly1305IETF:
		aead, err := ietfAEAD(m, key)
		if err != nil {
			return err
		}
		buf := aead.Seal(nil, nonce, src, ad)
		copy(dst, buf[:len(src)])
		copy(tag, buf[len(src):])
		return nil
	}
	return ErrSodiumOperation
}

// sodiumAEADOpen authenticates src against the detached tag and decrypts
// into dst.
func sodiumAEADOpen(m method, dst, src, tag, ad, nonce []byte, key *[sodiumKeyBytes]byte) error {
	switch m {
	case methodSodiumChacha20Poly1305:
		return draftChacha20Poly1305Open(dst, src, tag, ad, nonce, key)
	case methodSodiumChacha20Poly1305IETF, methodSodiumXChacha20Poly1305IETF:
		aead, err := ietfAEAD(m, key)
		if err != nil {
			return err
		}
		buf := make([]byte, 0, len(src)+poly1305.TagSize)
		buf = append(append(buf, src...), tag[:poly1305.TagSize]...)
		pt, err := aead.Open(nil, nonce, buf, ad)
		if err != nil {
			return ErrSodiumOperation
		}
		copy(dst, pt)
		return nil
	}
	return ErrSodiumOperation
}

func ietfAEAD(m method, key *[sodiumKeyBytes]byte) (stdcipher.AEAD, error) {
	if m == methodSodiumXChacha20Poly1305IETF {
		return chacha20poly1305.NewX(key[:])
	}
	return chacha20poly1305.New(key[:])
}

// The pre-IETF construction: the one-time poly1305 key is keystream block
// zero, data is encrypted from block one, and the tag covers
// ad ‖ len(ad) ‖ ciphertext ‖ len(ciphertext) with 8-byte little-endian
// lengths.
func draftChacha20Poly1305Seal(dst, tag, src, ad, nonce []byte, key *[sodiumKeyBytes]byte) error {
	polyKey, err := draftOneTimeKey(nonce, key)
	if err != nil {
		return err
	}

	s, err := chacha.NewCipher(nonce, key[:], chachaRounds)
	if err != nil {
		return err
	}
	s.SetCounter(1)
	s.XORKeyStream(dst[:len(src)], src)

	var mac [poly1305.TagSize]byte
	poly1305.Sum(&mac, draftMacData(ad, dst[:len(src)]), &polyKey)
	copy(tag, mac[:])
	return nil
}

func draftChacha20Poly1305Open(dst, src, tag, ad, nonce []byte, key *[sodiumKeyBytes]byte) error {
	polyKey, err := draftOneTimeKey(nonce, key)
	if err != nil {
		return err
	}

	var mac [poly1305.TagSize]byte
	copy(mac[:], tag)
	if !poly1305.Verify(&mac, draftMacData(ad, src), &polyKey) {
		return ErrSodiumOperation
	}

	s, err := chacha.NewCipher(nonce, key[:], chachaRounds)
	if err != nil {
		return err
	}
	s.SetCounter(1)
	s.XORKeyStream(dst[:len(src)], src)
	return nil
}

func draftOneTimeKey(nonce []byte, key *[sodiumKeyBytes]byte) ([32]byte, error) {
	var polyKey [32]byte
	s, err := chacha.NewCipher(nonce, key[:], chachaRounds)
	if err != nil {
		return polyKey, err
	}
	s.XORKeyStream(polyKey[:], polyKey[:])
	return polyKey, nil
}

func draftMacData(ad, ct []byte) []byte {
	buf := make([]byte, 0, len(ad)+len(ct)+16)
	buf = append(buf, ad...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(ad)))
	buf = append(buf, ct...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(ct)))
	return buf
}
