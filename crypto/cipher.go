package crypto

import (
	"github.com/tangzhenquan/atframe-utils/crypto/xxtea"
)

// Mode selects the directions a session creates contexts for.
type Mode uint32

const (
	// ModeEncrypt enables the encrypt direction.
	ModeEncrypt Mode = 0x01
	// ModeDecrypt enables the decrypt direction.
	ModeDecrypt Mode = 0x02
)

// sodiumKeyBytes is the scratch key size: large enough for the largest
// stream/AEAD key the facade dispatches to.
const sodiumKeyBytes = 32

// Cipher is a symmetric-cipher session: one descriptor, the back-end
// contexts for the directions chosen at Init, the current IV and the last
// back-end error code. The zero value is ready for Init. A Cipher is not
// safe for concurrent use.
type Cipher struct {
	info *cipherInfo
	kt   *cipherKt
	enc  *evpContext
	dec  *evpContext

	iv        []byte
	key       [sodiumKeyBytes]byte
	xxteaKey  xxtea.Key
	lastErrno int64
}

// setupErrno records the back-end-native code and passes the taxonomy error
// through.
func (c *Cipher) setupErrno(errno int64, err error) error {
	c.lastErrno = errno
	return err
}

// LastError returns the back-end-native integer recorded by the most recent
// operation. The value is opaque; only the returned Error is stable.
func (c *Cipher) LastError() int64 { return c.lastErrno }

// Name returns the canonical algorithm name, or "" on an empty session.
func (c *Cipher) Name() string {
	if c.info == nil {
		return ""
	}
	return c.info.name
}

// Init binds the session to the named algorithm and creates back-end
// contexts for the requested directions. It fails with ErrAlreadyInited on a
// bound session, ErrInvalidParam on an empty name and ErrCipherNotSupport
// when the name is unknown or its back-end does not resolve in this build.
func (c *Cipher) Init(name string, mode Mode) error {
	if c.info != nil && c.info.method != methodInvalid {
		return c.setupErrno(-1, ErrAlreadyInited)
	}
	if name == "" {
		return c.setupErrno(-1, ErrInvalidParam)
	}

	info := getCipherInfoByName(supportedCiphers, name)
	if info == nil {
		return c.setupErrno(-1, ErrCipherNotSupport)
	}
	return c.initInfo(info, mode)
}

func (c *Cipher) initInfo(info *cipherInfo, mode Mode) error {
	switch {
	case info.method == methodXXTEA:
		c.xxteaKey = xxtea.Key{}
	case info.method == methodCipher:
		if err := c.initWithCipher(info, mode); err != nil {
			return err
		}
	case info.method > methodSodium:
		c.key = [sodiumKeyBytes]byte{}
	default:
		return c.setupErrno(-1, ErrCipherNotSupport)
	}

	c.info = info
	return nil
}

func (c *Cipher) initWithCipher(info *cipherInfo, mode Mode) error {
	kt := resolveCipherKt(info)
	if kt == nil {
		return c.setupErrno(-1, ErrCipherNotSupport)
	}

	c.kt = kt
	if mode&ModeEncrypt != 0 {
		c.enc = newEVPContext(kt, true)
	}
	if mode&ModeDecrypt != 0 {
		c.dec = newEVPContext(kt, false)
	}
	return nil
}

// Close releases the back-end contexts and returns the session to the empty
// state. Closing an empty session reports ErrNotInited and is otherwise
// harmless. Close records a code of 0 like any other completed operation,
// and LastError keeps reporting it on the closed session.
func (c *Cipher) Close() error {
	if c.info == nil || c.info.method == methodInvalid {
		return c.setupErrno(0, ErrNotInited)
	}

	c.info = nil
	c.kt = nil
	c.enc = nil
	c.dec = nil
	c.iv = nil
	return c.setupErrno(0, nil)
}

// IsAEAD reports whether the bound descriptor is an AEAD cipher.
func (c *Cipher) IsAEAD() bool {
	return c.info != nil && c.info.flags&flagAEAD != 0
}

// IVSize returns the required IV length in bytes. Sodium-style stream
// ciphers count the 8-byte block-counter prefix; XXTEA has no IV.
func (c *Cipher) IVSize() int {
	if c.info == nil {
		return 0
	}
	switch {
	case c.info.method == methodXXTEA:
		return 0
	case c.info.method == methodCipher:
		if c.enc == nil && c.dec == nil {
			return 0
		}
		return c.kt.ivLen
	case c.info.method > methodSodium:
		return sodiumIVSize(c.info.method)
	}
	return 0
}

// KeyBits returns the required key length in bits.
func (c *Cipher) KeyBits() int {
	if c.info == nil {
		return 0
	}
	switch {
	case c.info.method == methodXXTEA:
		return xxtea.KeySize * 8
	case c.info.method == methodCipher:
		if c.enc == nil && c.dec == nil {
			return 0
		}
		return c.kt.keyLen * 8
	case c.info.method > methodSodium:
		return sodiumKeyBits(c.info.method)
	}
	return 0
}

// BlockSize returns the cipher block size in bytes; stream and AEAD flavours
// report 1.
func (c *Cipher) BlockSize() int {
	if c.info == nil {
		return 0
	}
	switch {
	case c.info.method == methodXXTEA:
		return xxtea.BlockSize
	case c.info.method == methodCipher:
		if c.enc == nil && c.dec == nil {
			return 0
		}
		return c.kt.blockSize
	case c.info.method > methodSodium:
		return 1
	}
	return 0
}

// SetKey binds the key. Generic-cipher descriptors reject keys shorter than
// KeyBits and truncate longer ones; XXTEA and sodium-style methods copy into
// the session's scratch buffer, ignoring excess, and always succeed.
func (c *Cipher) SetKey(key []byte) error {
	if c.info == nil {
		return c.setupErrno(0, ErrNotInited)
	}

	switch {
	case c.info.method == methodXXTEA:
		var secret [xxtea.KeySize]byte
		copy(secret[:], key)
		c.xxteaKey = xxtea.NewKey(secret[:])
		return c.setupErrno(0, nil)

	case c.info.method == methodCipher:
		if len(key)*8 < c.KeyBits() {
			return c.setupErrno(-1, ErrInvalidParam)
		}
		if c.enc != nil {
			c.enc.setKey(key)
		}
		if c.dec != nil {
			c.dec.setKey(key)
		}
		return c.setupErrno(0, nil)

	case c.info.method > methodSodium:
		c.key = [sodiumKeyBytes]byte{}
		copy(c.key[:], key)
		return c.setupErrno(0, nil)
	}
	return c.setupErrno(-1, ErrNotInited)
}

// SetIV stores the IV. Descriptors without a variable IV length require
// exactly IVSize bytes; variable-IV AEAD descriptors accept any length and
// leave bounds to the back-end.
func (c *Cipher) SetIV(iv []byte) error {
	if c.info == nil || c.info.method == methodInvalid {
		return c.setupErrno(0, ErrNotInited)
	}

	switch {
	case c.info.method == methodXXTEA:
		if len(iv) != c.IVSize() {
			return c.setupErrno(-1, ErrInvalidParam)
		}
		return c.setupErrno(0, nil)

	case c.info.method == methodCipher:
		if c.info.flags&flagVariableIVLen == 0 && len(iv) != c.IVSize() {
			return c.setupErrno(-1, ErrInvalidParam)
		}
		c.iv = append(c.iv[:0], iv...)
		return c.setupErrno(0, nil)

	case c.info.method > methodSodium:
		if len(iv) != c.IVSize() {
			return c.setupErrno(-1, ErrInvalidParam)
		}
		c.iv = append(c.iv[:0], iv...)
		return c.setupErrno(0, nil)
	}
	return nil
}

// ClearIV empties the IV buffer.
func (c *Cipher) ClearIV() { c.iv = c.iv[:0] }

// padIV zero-extends a short IV up to the required size for descriptors with
// a fixed IV length, so an unset IV behaves as all zeros.
func (c *Cipher) padIV() {
	if c.info.method < methodCipher || c.info.flags&flagVariableIVLen != 0 {
		return
	}
	want := c.IVSize()
	for len(c.iv) < want {
		c.iv = append(c.iv, 0)
	}
}

// Encrypt encrypts src into dst and returns the number of bytes written.
// dst must hold at least len(src)+BlockSize bytes. AEAD descriptors reject
// this call with ErrMustCallAeadAPI.
func (c *Cipher) Encrypt(dst, src []byte) (int, error) {
	if c.info == nil || c.info.method == methodInvalid {
		return 0, c.setupErrno(0, ErrNotInited)
	}
	if c.IsAEAD() {
		return 0, ErrMustCallAeadAPI
	}
	if len(src) == 0 || len(dst) < len(src)+c.BlockSize() {
		return 0, c.setupErrno(-1, ErrInvalidParam)
	}

	c.padIV()

	switch {
	case c.info.method == methodXXTEA:
		n, err := c.xxteaKey.Encrypt(dst, src)
		if err != nil {
			return 0, c.setupErrno(-1, ErrInvalidParam)
		}
		return n, c.setupErrno(0, nil)

	case c.info.method == methodCipher:
		if c.enc == nil {
			return 0, c.setupErrno(0, ErrCipherDisabled)
		}
		n, err := c.enc.oneshot(dst, src, c.iv, c.info.flags&flagEncryptNoPadding != 0)
		if err != nil {
			return 0, c.setupErrno(-1, err)
		}
		return n, c.setupErrno(0, nil)

	case isSodiumStream(c.info.method):
		if err := sodiumStreamXOR(c.info.method, dst[:len(src)], src, c.iv, &c.key); err != nil {
			return 0, c.setupErrno(-1, ErrSodiumOperation)
		}
		return len(src), c.setupErrno(0, nil)
	}
	return 0, c.setupErrno(-1, ErrNotInited)
}

// Decrypt decrypts src into dst and returns the number of bytes written.
// The contract mirrors Encrypt.
func (c *Cipher) Decrypt(dst, src []byte) (int, error) {
	if c.info == nil || c.info.method == methodInvalid {
		return 0, c.setupErrno(0, ErrNotInited)
	}
	if c.IsAEAD() {
		return 0, ErrMustCallAeadAPI
	}
	if len(src) == 0 || len(dst) < len(src)+c.BlockSize() {
		return 0, c.setupErrno(-1, ErrInvalidParam)
	}

	c.padIV()

	switch {
	case c.info.method == methodXXTEA:
		n, err := c.xxteaKey.Decrypt(dst, src)
		if err != nil {
			return 0, c.setupErrno(-1, ErrInvalidParam)
		}
		return n, c.setupErrno(0, nil)

	case c.info.method == methodCipher:
		if c.dec == nil {
			return 0, c.setupErrno(0, ErrCipherDisabled)
		}
		n, err := c.dec.oneshot(dst, src, c.iv, c.info.flags&flagDecryptNoPadding != 0)
		if err != nil {
			return 0, c.setupErrno(-1, err)
		}
		return n, c.setupErrno(0, nil)

	case isSodiumStream(c.info.method):
		if err := sodiumStreamXOR(c.info.method, dst[:len(src)], src, c.iv, &c.key); err != nil {
			return 0, c.setupErrno(-1, ErrSodiumOperation)
		}
		return len(src), c.setupErrno(0, nil)
	}
	return 0, c.setupErrno(-1, ErrNotInited)
}

// EncryptAEAD encrypts src into dst, authenticating ad, and writes the
// detached tag into tag. Non-AEAD descriptors reject this call with
// ErrMustNotCallAeadAPI. For sodium-style AEAD the tag buffer must hold at
// least the algorithm's tag size.
func (c *Cipher) EncryptAEAD(dst, src, ad, tag []byte) (int, error) {
	if c.info == nil || c.info.method == methodInvalid {
		return 0, c.setupErrno(0, ErrNotInited)
	}
	if !c.IsAEAD() {
		return 0, ErrMustNotCallAeadAPI
	}
	if len(src) == 0 || len(dst) < len(src)+c.BlockSize() {
		return 0, c.setupErrno(-1, ErrInvalidParam)
	}

	c.padIV()

	switch {
	case c.info.method == methodCipher:
		if c.enc == nil {
			return 0, c.setupErrno(0, ErrCipherDisabled)
		}
		n, err := c.enc.aeadSeal(dst, src, c.aeadIV(), ad, tag)
		if err != nil {
			return 0, c.setupErrno(-1, err)
		}
		return n, c.setupErrno(0, nil)

	case isSodiumAEAD(c.info.method):
		if len(tag) < sodiumTagSize(c.info.method) {
			return 0, ErrSodiumOperationTagLen
		}
		if err := sodiumAEADSeal(c.info.method, dst, tag, src, ad, c.iv, &c.key); err != nil {
			return 0, c.setupErrno(-1, ErrSodiumOperation)
		}
		return len(src), c.setupErrno(0, nil)
	}
	return 0, c.setupErrno(-1, ErrNotInited)
}

// DecryptAEAD authenticates src and ad against the detached tag and
// decrypts into dst. Authentication failures surface as ErrCipherOperation
// from the generic back-end and ErrSodiumOperation from the sodium-style
// one.
func (c *Cipher) DecryptAEAD(dst, src, ad, tag []byte) (int, error) {
	if c.info == nil || c.info.method == methodInvalid {
		return 0, c.setupErrno(0, ErrNotInited)
	}
	if !c.IsAEAD() {
		return 0, ErrMustNotCallAeadAPI
	}
	if len(src) == 0 || len(dst) < len(src)+c.BlockSize() {
		return 0, c.setupErrno(-1, ErrInvalidParam)
	}

	c.padIV()

	switch {
	case c.info.method == methodCipher:
		if c.dec == nil {
			return 0, c.setupErrno(0, ErrCipherDisabled)
		}
		n, err := c.dec.aeadOpen(dst, src, c.aeadIV(), ad, tag)
		if err != nil {
			return 0, c.setupErrno(-1, err)
		}
		return n, c.setupErrno(0, nil)

	case isSodiumAEAD(c.info.method):
		if len(tag) < sodiumTagSize(c.info.method) {
			return 0, ErrSodiumOperationTagLen
		}
		if err := sodiumAEADOpen(c.info.method, dst, src, tag, ad, c.iv, &c.key); err != nil {
			return 0, c.setupErrno(-1, ErrSodiumOperation)
		}
		return len(src), c.setupErrno(0, nil)
	}
	return 0, c.setupErrno(-1, ErrNotInited)
}

// aeadIV resolves the IV for a generic AEAD call: an unset IV means the
// back-end's default-size zero IV.
func (c *Cipher) aeadIV() []byte {
	if len(c.iv) != 0 {
		return c.iv
	}
	return make([]byte, c.kt.ivLen)
}
