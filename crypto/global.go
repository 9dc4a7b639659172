package crypto

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	initGlobalOnce    sync.Once
	cleanupGlobalOnce sync.Once
)

// InitGlobalAlgorithm performs the process-wide back-end setup. The Go
// back-ends register nothing globally, so the call only announces the
// catalogue once; it exists so callers can keep the same lifecycle across
// back-ends that do need it.
func InitGlobalAlgorithm() error {
	initGlobalOnce.Do(func() {
		logrus.WithFields(logrus.Fields{
			"package": "crypto",
			"ciphers": len(AllCipherNames()),
			"sodium":  sodiumEnabled,
		}).Debug("cipher catalogue ready")
	})
	return nil
}

// CleanupGlobalAlgorithm is the symmetric teardown of InitGlobalAlgorithm.
// Call it after the last session is closed.
func CleanupGlobalAlgorithm() error {
	cleanupGlobalOnce.Do(func() {
		logrus.WithField("package", "crypto").Debug("cipher catalogue released")
	})
	return nil
}
