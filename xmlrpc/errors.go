package xmlrpc

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode classifies every failure turning XML text into values.
	ErrDecode = errors.New("xmlrpc: decode error")
	// ErrEncode classifies every failure turning values into XML text.
	ErrEncode = errors.New("xmlrpc: encode error")
)

func decodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

func encodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEncode, fmt.Sprintf(format, args...))
}
