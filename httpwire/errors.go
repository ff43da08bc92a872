package httpwire

import "errors"

var (
	ErrUnexpectedEOF        = errors.New("httpwire: unexpected end of stream")
	ErrMalformedRequestLine = errors.New("httpwire: malformed request line")
	ErrInvalidMethod        = errors.New("httpwire: invalid method")
	ErrInvalidVersion       = errors.New("httpwire: invalid http version")
	ErrMalformedHeader      = errors.New("httpwire: malformed header")
	ErrHeaderNotASCII       = errors.New("httpwire: header is not in ascii")
	ErrInvalidContentLength = errors.New("httpwire: invalid content length")
	ErrAlreadySent          = errors.New("httpwire: response already sent")
)
