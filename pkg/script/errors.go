package script

import "errors"

var (
	// ErrInvalidInput covers malformed field syntax: unparsable numbers or
	// signs, unterminated quotes, unsupported unit values, bad bootable
	// tokens.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedHeader is returned for a header name outside the
	// recognized set. Whole-stream reads skip the line and continue,
	// single-buffer parsing treats it as fatal.
	ErrUnsupportedHeader = errors.New("unsupported header")

	// ErrCorruptInput is returned when a line exceeds the line buffer
	// without a terminator before end of input.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrUnresolvable is returned when a type token, label name or size
	// value cannot be resolved against the bound device context or label
	// driver.
	ErrUnresolvable = errors.New("unresolvable value")
)
