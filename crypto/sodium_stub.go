//go:build no_sodium

package crypto

// Stub adapter for builds without the sodium-style back-end. The registry
// table carries no sodium entries in this shape, so these paths are only
// reachable through a hand-built descriptor.

const sodiumEnabled = false

const sodiumCounterSize = 8

func sodiumIVSize(method) int { return 0 }

func sodiumKeyBits(method) int { return 0 }

func sodiumTagSize(method) int { return 0 }

func sodiumStreamXOR(method, []byte, []byte, []byte, *[sodiumKeyBytes]byte) error {
	return ErrCipherNotSupport
}

func sodiumAEADSeal(method, []byte, []byte, []byte, []byte, []byte, *[sodiumKeyBytes]byte) error {
	return ErrCipherNotSupport
}

func sodiumAEADOpen(method, []byte, []byte, []byte, []byte, []byte, *[sodiumKeyBytes]byte) error {
	return ErrCipherNotSupport
}
