package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/rc4"
	"encoding/binary"
	"strings"

	"github.com/aead/camellia"
	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/chacha20poly1305"
)

// The generic adapter plays the role of the EVP/mbedTLS back-end: it
// resolves descriptor names to concrete cipher constructors and runs
// one-shot operations against per-direction contexts. Sizes reported here
// match what the EVP layer reports for the same names (stream and AEAD
// modes report a block size of 1, GCM defaults to a 12-byte IV, chacha20
// carries its 4-byte little-endian counter in front of the nonce).

type ktKind int

const (
	ktStream ktKind = iota
	ktCBC
	ktECB
	ktAEAD
)

// cipherKt is a resolved cipher handle of the generic back-end.
type cipherKt struct {
	kind      ktKind
	keyLen    int // bytes
	ivLen     int
	blockSize int
	newBlock  func(key []byte) (cipher.Block, error)
	newStream func(key, iv []byte, encrypt bool) (cipher.Stream, error)
	newAEAD   func(key []byte, ivLen, tagLen int) (cipher.AEAD, error)
}

func cfbKt(keyLen, ivLen int, newBlock func([]byte) (cipher.Block, error)) *cipherKt {
	return &cipherKt{
		kind: ktStream, keyLen: keyLen, ivLen: ivLen, blockSize: 1,
		newStream: func(key, iv []byte, encrypt bool) (cipher.Stream, error) {
			block, err := newBlock(key)
			if err != nil {
				return nil, err
			}
			if encrypt {
				return cipher.NewCFBEncrypter(block, iv), nil
			}
			return cipher.NewCFBDecrypter(block, iv), nil
		},
	}
}

func ctrKt(keyLen, ivLen int, newBlock func([]byte) (cipher.Block, error)) *cipherKt {
	return &cipherKt{
		kind: ktStream, keyLen: keyLen, ivLen: ivLen, blockSize: 1,
		newStream: func(key, iv []byte, _ bool) (cipher.Stream, error) {
			block, err := newBlock(key)
			if err != nil {
				return nil, err
			}
			return cipher.NewCTR(block, iv), nil
		},
	}
}

func ecbKt(keyLen, blockSize int, newBlock func([]byte) (cipher.Block, error)) *cipherKt {
	return &cipherKt{kind: ktECB, keyLen: keyLen, blockSize: blockSize, newBlock: newBlock}
}

func cbcKt(keyLen, blockSize int, newBlock func([]byte) (cipher.Block, error)) *cipherKt {
	return &cipherKt{kind: ktCBC, keyLen: keyLen, ivLen: blockSize, blockSize: blockSize, newBlock: newBlock}
}

func gcmKt(keyLen int) *cipherKt {
	return &cipherKt{
		kind: ktAEAD, keyLen: keyLen, ivLen: 12, blockSize: 1,
		newAEAD: func(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, ErrCipherOperation
			}
			switch {
			case tagLen == 16 && ivLen == 12:
				return cipher.NewGCM(block)
			case tagLen == 16:
				a, err := cipher.NewGCMWithNonceSize(block, ivLen)
				if err != nil {
					return nil, ErrCipherOperationSetIV
				}
				return a, nil
			case ivLen == 12 && tagLen >= 12:
				a, err := cipher.NewGCMWithTagSize(block, tagLen)
				if err != nil {
					return nil, ErrCipherOperation
				}
				return a, nil
			case tagLen < 12:
				return nil, ErrCipherOperation
			default:
				// truncated tag plus nonstandard nonce is not expressible
				return nil, ErrCipherOperationSetIV
			}
		},
	}
}

func blowfishBlock(key []byte) (cipher.Block, error) { return blowfish.NewCipher(key) }

func rc4Kt() *cipherKt {
	return &cipherKt{
		kind: ktStream, keyLen: 16, blockSize: 1,
		newStream: func(key, _ []byte, _ bool) (cipher.Stream, error) {
			return rc4.NewCipher(key)
		},
	}
}

// des-ede is two-key triple DES; the stdlib wants the 24-byte form, so the
// first key reappears as the third.
func desEDEBlock(key []byte) (cipher.Block, error) {
	k := make([]byte, 24)
	copy(k, key[:16])
	copy(k[16:], key[:8])
	return des.NewTripleDESCipher(k)
}

// chacha20 in the generic back-end uses the EVP IV layout: a 4-byte
// little-endian block counter followed by the 12-byte nonce.
func evpChacha20Kt() *cipherKt {
	return &cipherKt{
		kind: ktStream, keyLen: 32, ivLen: 16, blockSize: 1,
		newStream: func(key, iv []byte, _ bool) (cipher.Stream, error) {
			s, err := chacha20.NewUnauthenticatedCipher(key, iv[4:16])
			if err != nil {
				return nil, err
			}
			s.SetCounter(binary.LittleEndian.Uint32(iv[:4]))
			return s, nil
		},
	}
}

func chacha20Poly1305Kt() *cipherKt {
	return &cipherKt{
		kind: ktAEAD, keyLen: 32, ivLen: chacha20poly1305.NonceSize, blockSize: 1,
		newAEAD: func(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
			if ivLen != chacha20poly1305.NonceSize {
				return nil, ErrCipherOperationSetIV
			}
			if tagLen != chacha20poly1305.Overhead {
				return nil, ErrCipherOperation
			}
			a, err := chacha20poly1305.New(key)
			if err != nil {
				return nil, ErrCipherOperation
			}
			return a, nil
		},
	}
}

var cipherKts = map[string]*cipherKt{
	"rc4":              rc4Kt(),
	"aes-128-cfb":      cfbKt(16, 16, aes.NewCipher),
	"aes-192-cfb":      cfbKt(24, 16, aes.NewCipher),
	"aes-256-cfb":      cfbKt(32, 16, aes.NewCipher),
	"aes-128-ctr":      ctrKt(16, 16, aes.NewCipher),
	"aes-192-ctr":      ctrKt(24, 16, aes.NewCipher),
	"aes-256-ctr":      ctrKt(32, 16, aes.NewCipher),
	"aes-128-ecb":      ecbKt(16, 16, aes.NewCipher),
	"aes-192-ecb":      ecbKt(24, 16, aes.NewCipher),
	"aes-256-ecb":      ecbKt(32, 16, aes.NewCipher),
	"aes-128-cbc":      cbcKt(16, 16, aes.NewCipher),
	"aes-192-cbc":      cbcKt(24, 16, aes.NewCipher),
	"aes-256-cbc":      cbcKt(32, 16, aes.NewCipher),
	"des-ecb":          ecbKt(8, 8, des.NewCipher),
	"des-cbc":          cbcKt(8, 8, des.NewCipher),
	"des-ede":          ecbKt(16, 8, desEDEBlock),
	"des-ede-cbc":      cbcKt(16, 8, desEDEBlock),
	"des-ede3":         ecbKt(24, 8, des.NewTripleDESCipher),
	"des-ede3-cbc":     cbcKt(24, 8, des.NewTripleDESCipher),
	"bf-cbc":           cbcKt(16, 8, blowfishBlock),
	"bf-cfb":           cfbKt(16, 8, blowfishBlock),
	"camellia-128-cfb": cfbKt(16, 16, camellia.NewCipher),
	"camellia-192-cfb": cfbKt(24, 16, camellia.NewCipher),
	"camellia-256-cfb": cfbKt(32, 16, camellia.NewCipher),
	"chacha20":         evpChacha20Kt(),
	"aes-128-gcm":      gcmKt(16),
	"aes-192-gcm":      gcmKt(24),
	"aes-256-gcm":      gcmKt(32),
	// registered under the back-end name; the canonical entry reaches it
	// through its altName
	"chacha20-poly1305": chacha20Poly1305Kt(),
}

// resolveCipherKt resolves a descriptor to its generic back-end handle by its
// back-end-specific name when the descriptor carries one, and by its
// canonical name otherwise; there is no fallback from one to the other.
func resolveCipherKt(info *cipherInfo) *cipherKt {
	name := info.name
	if info.altName != "" {
		name = info.altName
	}
	return cipherKts[strings.ToLower(name)]
}

// evpContext is one direction of a generic-cipher session.
type evpContext struct {
	kt      *cipherKt
	encrypt bool
	key     []byte
	stream  cipher.Stream
}

func newEVPContext(kt *cipherKt, encrypt bool) *evpContext {
	return &evpContext{kt: kt, encrypt: encrypt}
}

// setKey binds the leading keyLen bytes; the session has already checked the
// length. Rebinding the key resets any retained keystream.
func (ctx *evpContext) setKey(key []byte) {
	ctx.key = append(ctx.key[:0], key[:ctx.kt.keyLen]...)
	ctx.stream = nil
}

// keystream returns the stream for this call. Ciphers with no IV keep their
// keystream across calls: there is no IV rebind to reset them, so successive
// one-shot calls continue where the previous one stopped.
func (ctx *evpContext) keystream(iv []byte) (cipher.Stream, error) {
	if ctx.kt.ivLen == 0 {
		if ctx.stream == nil {
			s, err := ctx.kt.newStream(ctx.key, nil, ctx.encrypt)
			if err != nil {
				return nil, err
			}
			ctx.stream = s
		}
		return ctx.stream, nil
	}
	return ctx.kt.newStream(ctx.key, iv[:ctx.kt.ivLen], ctx.encrypt)
}

// oneshot runs a non-AEAD encrypt or decrypt over the whole input.
func (ctx *evpContext) oneshot(dst, src, iv []byte, noPadding bool) (int, error) {
	switch ctx.kt.kind {
	case ktStream:
		s, err := ctx.keystream(iv)
		if err != nil {
			return 0, ErrCipherOperation
		}
		s.XORKeyStream(dst[:len(src)], src)
		return len(src), nil
	case ktECB:
		return ctx.blockOneshot(dst, src, nil, noPadding)
	case ktCBC:
		return ctx.blockOneshot(dst, src, iv, noPadding)
	}
	return 0, ErrCipherOperation
}

func (ctx *evpContext) blockOneshot(dst, src, iv []byte, noPadding bool) (int, error) {
	block, err := ctx.kt.newBlock(ctx.key)
	if err != nil {
		return 0, ErrCipherOperation
	}
	bs := block.BlockSize()

	if ctx.encrypt {
		data := src
		if noPadding {
			if len(src)%bs != 0 {
				return 0, ErrCipherOperation
			}
		} else {
			data = pkcs7Pad(src, bs)
		}
		ctx.cryptBlocks(block, dst[:len(data)], data, iv)
		return len(data), nil
	}

	if len(src)%bs != 0 {
		return 0, ErrCipherOperation
	}
	ctx.cryptBlocks(block, dst[:len(src)], src, iv)
	if noPadding {
		return len(src), nil
	}
	return pkcs7Unpad(dst[:len(src)], bs)
}

func (ctx *evpContext) cryptBlocks(block cipher.Block, dst, src, iv []byte) {
	bs := block.BlockSize()
	if ctx.kt.kind == ktCBC {
		var mode cipher.BlockMode
		if ctx.encrypt {
			mode = cipher.NewCBCEncrypter(block, iv[:bs])
		} else {
			mode = cipher.NewCBCDecrypter(block, iv[:bs])
		}
		mode.CryptBlocks(dst, src)
		return
	}
	for i := 0; i < len(src); i += bs {
		if ctx.encrypt {
			block.Encrypt(dst[i:i+bs], src[i:i+bs])
		} else {
			block.Decrypt(dst[i:i+bs], src[i:i+bs])
		}
	}
}

// aeadSeal encrypts src and writes the detached tag. A shorter tag buffer
// receives the leading bytes of the full tag, the way the back-end's
// get-tag control behaves.
func (ctx *evpContext) aeadSeal(dst, src, iv, ad, tag []byte) (int, error) {
	if len(tag) > 16 {
		return 0, ErrCipherOperation
	}
	aead, err := ctx.kt.newAEAD(ctx.key, len(iv), 16)
	if err != nil {
		return 0, err
	}

	buf := aead.Seal(nil, iv, src, ad)
	n := copy(dst, buf[:len(src)])
	copy(tag, buf[len(src):])
	return n, nil
}

// aeadOpen authenticates and decrypts src with the detached tag.
func (ctx *evpContext) aeadOpen(dst, src, iv, ad, tag []byte) (int, error) {
	aead, err := ctx.kt.newAEAD(ctx.key, len(iv), len(tag))
	if err != nil {
		return 0, err
	}

	buf := make([]byte, 0, len(src)+len(tag))
	buf = append(append(buf, src...), tag...)
	pt, err := aead.Open(dst[:0], iv, buf, ad)
	if err != nil {
		return 0, ErrCipherOperation
	}
	return len(pt), nil
}

func pkcs7Pad(src []byte, bs int) []byte {
	pad := bs - len(src)%bs
	out := make([]byte, len(src)+pad)
	copy(out, src)
	for i := len(src); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte, bs int) (int, error) {
	if len(data) == 0 {
		return 0, ErrCipherOperation
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > bs || pad > len(data) {
		return 0, ErrCipherOperation
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return 0, ErrCipherOperation
		}
	}
	return len(data) - pad, nil
}
