// Package logging provides a field-scoped structured-logging helper built on
// logrus. No other package of the library imports it.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Helper carries a fixed set of logrus fields scoped to one package and
// function, so call sites stay short and log lines stay uniform.
type Helper struct {
	fields logrus.Fields
}

// New creates a helper scoped to a package and function.
func New(pkg, function string) *Helper {
	return &Helper{
		fields: logrus.Fields{
			"package":  pkg,
			"function": function,
		},
	}
}

// WithField adds a custom field to the helper.
func (h *Helper) WithField(key string, value interface{}) *Helper {
	h.fields[key] = value
	return h
}

// WithFields adds multiple custom fields to the helper.
func (h *Helper) WithFields(fields logrus.Fields) *Helper {
	for k, v := range fields {
		h.fields[k] = v
	}
	return h
}

// WithError adds error information to the helper.
func (h *Helper) WithError(err error) *Helper {
	h.fields["error"] = err.Error()
	return h
}

// Debug logs a debug message with the helper's fields.
func (h *Helper) Debug(message string) {
	logrus.WithFields(h.fields).Debug(message)
}

// Info logs an info message with the helper's fields.
func (h *Helper) Info(message string) {
	logrus.WithFields(h.fields).Info(message)
}

// Warn logs a warning message with the helper's fields.
func (h *Helper) Warn(message string) {
	logrus.WithFields(h.fields).Warn(message)
}

// Error logs an error message with the helper's fields.
func (h *Helper) Error(message string) {
	logrus.WithFields(h.fields).Error(message)
}

// Preview builds fields describing sensitive data without logging it: only
// the first 8 bytes appear, plus the total size.
func Preview(data []byte, name string) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		n := 8
		if len(data) < n {
			n = len(data)
		}
		preview = fmt.Sprintf("%x", data[:n])
		if len(data) > n {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}
