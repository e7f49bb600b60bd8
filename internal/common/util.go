package common

import "strings"

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// UserMessage returns the text shown to the user for err: the first line of
// the error message, or an empty string for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
