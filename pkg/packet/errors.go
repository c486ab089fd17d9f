package packet

import (
	"errors"
	"fmt"

	"firestige.xyz/otus-dissect/pkg/wire"
)

var (
	// ErrIllegalRawData marks a structural decode failure: short buffer,
	// type tag mismatch or a declared length the buffer cannot satisfy.
	ErrIllegalRawData = errors.New("packet: illegal raw data")

	// ErrNilRawData is returned when a decoder is handed a nil buffer.
	ErrNilRawData = errors.New("packet: raw data may not be nil")

	// ErrInvalidArgument marks a builder whose staged fields violate a
	// hard format constraint.
	ErrInvalidArgument = errors.New("packet: invalid argument")
)

// IllegalRawDataError is the structural decode error produced by every
// codec. It matches ErrIllegalRawData and, when set, its Cause.
type IllegalRawDataError struct {
	Msg   string
	Raw   []byte
	Cause error
}

func (e *IllegalRawDataError) Error() string {
	s := e.Msg
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	if e.Raw != nil {
		s += " rawData: " + wire.HexString(e.Raw, " ")
	}
	return s
}

func (e *IllegalRawDataError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrIllegalRawData, e.Cause}
	}
	return []error{ErrIllegalRawData}
}

// Illegalf builds an IllegalRawDataError with a hex dump of raw.
func Illegalf(raw []byte, format string, args ...any) error {
	return &IllegalRawDataError{Msg: fmt.Sprintf(format, args...), Raw: raw}
}

// WrapIllegal turns a wire error into a structural decode error, keeping
// the wire error reachable through errors.Is.
func WrapIllegal(raw []byte, cause error, format string, args ...any) error {
	return &IllegalRawDataError{Msg: fmt.Sprintf(format, args...), Raw: raw, Cause: cause}
}

// TooShort is the standard "minimum size" rejection.
func TooShort(raw []byte, what string, min int) error {
	return &IllegalRawDataError{
		Msg:   fmt.Sprintf("the raw data length must be at least %d to build %s, but is %d", min, what, len(raw)),
		Raw:   raw,
		Cause: wire.ErrBufferTooShort,
	}
}

// TypeMismatch is the standard "type tag" rejection.
func TypeMismatch(raw []byte, expected fmt.Stringer) error {
	return &IllegalRawDataError{Msg: fmt.Sprintf("the type must be: %s", expected), Raw: raw}
}

// CheckNil rejects a nil buffer.
func CheckNil(raw []byte) error {
	if raw == nil {
		return &IllegalRawDataError{Msg: "decode", Cause: ErrNilRawData}
	}
	return nil
}

// Invalidf builds an argument error for a builder.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
