package wbuf

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid wbuf magic")
	ErrUnsupportedMajor = errors.New("unsupported wbuf major version")
	ErrCorruptFile      = errors.New("corrupt wbuf file")
)
