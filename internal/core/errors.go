// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors of the dissect tool layer. Codec errors live in
// pkg/packet.
var (
	// Frame decoding errors
	ErrFrameTooShort    = errors.New("otus: frame too short")
	ErrUnsupportedProto = errors.New("otus: unsupported protocol")

	// Configuration errors
	ErrConfigInvalid = errors.New("otus: invalid configuration")
	ErrUnknownFamily = errors.New("otus: unknown unit family")
)
