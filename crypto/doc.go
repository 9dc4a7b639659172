// Package crypto provides a unified symmetric-cipher facade over
// heterogeneous back-ends.
//
// A single session type dispatches across a generic EVP-style back-end
// (AES, DES, Blowfish, Camellia, RC4, GCM), a sodium-style back-end
// (chacha20/salsa20 stream families and the chacha20-poly1305 AEAD family)
// and a built-in XXTEA block cipher, while staying bit-exact with each
// back-end's native output.
//
// # Sessions
//
// Algorithms are selected by canonical name from an ordered registry;
// lookup is case-insensitive and the first entry wins, so a name served by
// two back-ends always resolves the same way:
//
//	var c crypto.Cipher
//	if err := c.Init("aes-256-gcm", crypto.ModeEncrypt|crypto.ModeDecrypt); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	c.SetKey(key)
//	c.SetIV(iv)
//
//	ct := make([]byte, len(msg)+c.BlockSize())
//	tag := make([]byte, 16)
//	n, err := c.EncryptAEAD(ct, msg, ad, tag)
//
// Non-AEAD descriptors use Encrypt/Decrypt instead; calling the wrong pair
// fails with ErrMustCallAeadAPI or ErrMustNotCallAeadAPI. AEAD tags are
// always detached.
//
// # IV layouts
//
// Sodium-style stream ciphers take their IV as an 8-byte little-endian
// block counter followed by the algorithm nonce; sodium-style AEAD takes
// the raw nonce. Descriptors with a fixed IV size zero-extend a short IV at
// call time and reject mismatched lengths in SetIV.
//
// # Errors
//
// Operations return values of the Error taxonomy and record a back-end
// native code readable via LastError; the AEAD API guard errors and the
// sodium tag-length error leave LastError unchanged. Errors are never recovered
// internally; after a back-end rejection the session stays usable, and
// Close plus Init returns it to a clean state.
//
// Sessions are single-owner: concurrent use of one Cipher is undefined.
// Distinct sessions are independent.
package crypto
