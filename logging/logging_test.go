package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperFields(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	logrus.SetLevel(logrus.DebugLevel)

	New("crypto", "Init").
		WithField("cipher", "aes-256-gcm").
		WithFields(logrus.Fields{"mode": 3}).
		Info("session ready")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "session ready", entry.Message)
	assert.Equal(t, "crypto", entry.Data["package"])
	assert.Equal(t, "Init", entry.Data["function"])
	assert.Equal(t, "aes-256-gcm", entry.Data["cipher"])
	assert.Equal(t, 3, entry.Data["mode"])
}

func TestHelperWithError(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	New("crypto", "SetKey").WithError(assert.AnError).Error("set key failed")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, assert.AnError.Error(), entry.Data["error"])
}

func TestPreview(t *testing.T) {
	fields := Preview([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}, "key")
	assert.Equal(t, "0102030405060708...", fields["key_preview"])
	assert.Equal(t, 9, fields["key_size"])

	short := Preview([]byte{0xaa}, "iv")
	assert.Equal(t, "aa", short["iv_preview"])
	assert.Equal(t, 1, short["iv_size"])

	empty := Preview(nil, "tag")
	assert.Equal(t, "nil", empty["tag_preview"])
	assert.Equal(t, 0, empty["tag_size"])
}
