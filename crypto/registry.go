package crypto

import (
	"strings"
	"sync"
)

// method selects the dispatch path of a registry entry.
type method int

const (
	methodInvalid method = iota
	methodXXTEA
	methodInner // boundary: methods above are built in and always available
	methodCipher
	methodSodium // boundary: methods below use the sodium-style adapter
	methodSodiumChacha20
	methodSodiumChacha20IETF
	methodSodiumXChacha20
	methodSodiumSalsa20
	methodSodiumXSalsa20
	methodSodiumChacha20Poly1305
	methodSodiumChacha20Poly1305IETF
	methodSodiumXChacha20Poly1305IETF
)

func isSodiumStream(m method) bool {
	return m >= methodSodiumChacha20 && m <= methodSodiumXSalsa20
}

func isSodiumAEAD(m method) bool {
	return m >= methodSodiumChacha20Poly1305 && m <= methodSodiumXChacha20Poly1305IETF
}

// Descriptor flags.
const (
	flagNoFinish            uint32 = 0x0001 // skip the back-end finalization step
	flagAEAD                uint32 = 0x0010
	flagVariableIVLen       uint32 = 0x0020
	flagAEADSetLengthBefore uint32 = 0x0040 // announce plaintext length before data
	flagDecryptNoPadding    uint32 = 0x0100
	flagEncryptNoPadding    uint32 = 0x0200

	flagNoPadding = flagEncryptNoPadding | flagDecryptNoPadding
)

// cipherInfo is one immutable descriptor of the algorithm registry. altName,
// when set, is the name the generic back-end resolves instead of the
// canonical one.
type cipherInfo struct {
	name    string
	method  method
	altName string
	flags   uint32
}

// tableConfig mirrors the build-time knobs of the registry: whether the
// generic back-end carries the chacha20 family and whether the sodium-style
// adapter is compiled in. The package-level table uses the build defaults;
// tests exercise the other shapes directly.
type tableConfig struct {
	cipherChacha20         bool
	cipherChacha20Poly1305 bool
	sodium                 bool
}

var defaultTableConfig = tableConfig{
	cipherChacha20:         true,
	cipherChacha20Poly1305: true,
	sodium:                 sodiumEnabled,
}

// buildCipherTable constructs the ordered registry. The order is part of the
// contract: lookup takes the first case-insensitive match, so a generic
// chacha20 entry shadows the sodium one when both are present.
func buildCipherTable(cfg tableConfig) []cipherInfo {
	table := make([]cipherInfo, 0, 40)

	table = append(table,
		cipherInfo{name: "xxtea", method: methodXXTEA},
		cipherInfo{name: "rc4", method: methodCipher},
		cipherInfo{name: "aes-128-cfb", method: methodCipher},
		cipherInfo{name: "aes-192-cfb", method: methodCipher},
		cipherInfo{name: "aes-256-cfb", method: methodCipher},
		cipherInfo{name: "aes-128-ctr", method: methodCipher},
		cipherInfo{name: "aes-192-ctr", method: methodCipher},
		cipherInfo{name: "aes-256-ctr", method: methodCipher},
		cipherInfo{name: "aes-128-ecb", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "aes-192-ecb", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "aes-256-ecb", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "aes-128-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "aes-192-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "aes-256-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "des-ecb", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "des-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "des-ede", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "des-ede-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "des-ede3", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "des-ede3-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "bf-cbc", method: methodCipher, flags: flagNoPadding},
		cipherInfo{name: "bf-cfb", method: methodCipher},
		cipherInfo{name: "camellia-128-cfb", method: methodCipher},
		cipherInfo{name: "camellia-192-cfb", method: methodCipher},
		cipherInfo{name: "camellia-256-cfb", method: methodCipher},
	)

	if cfg.cipherChacha20 {
		table = append(table, cipherInfo{name: "chacha20", method: methodCipher})
	}

	if cfg.sodium {
		table = append(table,
			cipherInfo{name: "chacha20", method: methodSodiumChacha20},
			cipherInfo{name: "chacha20-ietf", method: methodSodiumChacha20IETF},
			cipherInfo{name: "xchacha20", method: methodSodiumXChacha20},
			cipherInfo{name: "salsa20", method: methodSodiumSalsa20},
			cipherInfo{name: "xsalsa20", method: methodSodiumXSalsa20},
		)
	}

	table = append(table,
		cipherInfo{name: "aes-128-gcm", method: methodCipher, flags: flagAEAD | flagVariableIVLen},
		cipherInfo{name: "aes-192-gcm", method: methodCipher, flags: flagAEAD | flagVariableIVLen},
		cipherInfo{name: "aes-256-gcm", method: methodCipher, flags: flagAEAD | flagVariableIVLen},
	)

	if cfg.cipherChacha20Poly1305 {
		table = append(table, cipherInfo{
			name:    "chacha20-poly1305-ietf",
			method:  methodCipher,
			altName: "chacha20-poly1305",
			flags:   flagAEAD | flagVariableIVLen,
		})
	}

	if cfg.sodium {
		table = append(table,
			cipherInfo{name: "chacha20-poly1305", method: methodSodiumChacha20Poly1305, flags: flagAEAD},
			cipherInfo{name: "chacha20-poly1305-ietf", method: methodSodiumChacha20Poly1305IETF, flags: flagAEAD},
			cipherInfo{name: "xchacha20-poly1305-ietf", method: methodSodiumXChacha20Poly1305IETF, flags: flagAEAD},
		)
	}

	return table
}

var supportedCiphers = buildCipherTable(defaultTableConfig)

// getCipherInfoByName returns the first table entry whose canonical name
// matches, ignoring case, or nil.
func getCipherInfoByName(table []cipherInfo, name string) *cipherInfo {
	if name == "" {
		return nil
	}
	for i := range table {
		if strings.EqualFold(table[i].name, name) {
			return &table[i]
		}
	}
	return nil
}

// availableNames filters a table down to the canonical names whose back-end
// resolves, preserving table order.
func availableNames(table []cipherInfo) []string {
	names := make([]string, 0, len(table))
	for i := range table {
		info := &table[i]
		switch {
		case info.method == methodInvalid:
		case info.method < methodInner:
			names = append(names, info.name)
		case info.method == methodCipher:
			if resolveCipherKt(info) != nil {
				names = append(names, info.name)
			}
		case info.method > methodSodium:
			names = append(names, info.name)
		}
	}
	return names
}

var (
	allCipherNamesOnce sync.Once
	allCipherNames     []string
)

// AllCipherNames enumerates the canonical names usable in this build, in
// registry order. The list is computed once per process.
func AllCipherNames() []string {
	allCipherNamesOnce.Do(func() {
		allCipherNames = availableNames(supportedCiphers)
	})
	return allCipherNames
}
