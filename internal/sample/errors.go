package sample

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	ErrInvalidFile       = errors.New("invalid or corrupt sample file")
	ErrEmptySample       = errors.New("sample contains no audio")
)
