package ssh2

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// UnknownMessage is a payload whose message number has no codec.
type UnknownMessage struct {
	packet.Raw
}

func DecodeUnknownMessage(raw []byte) (*UnknownMessage, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < numberSize {
		return nil, packet.TooShort(raw, "an SSH2 message", numberSize)
	}
	return &UnknownMessage{packet.NewRaw(raw)}, nil
}

func (m *UnknownMessage) Number() MessageNumber { return MessageNumber(m.RawData()[0]) }
func (m *UnknownMessage) ssh2Message()          {}

func (m *UnknownMessage) String() string {
	raw := m.RawData()
	return fmt.Sprintf("[Message Number: %s] [data: 0x%s]", MessageNumber(raw[0]), wire.HexString(raw[numberSize:], ""))
}

// IllegalMessage keeps the bytes of a payload that failed validation.
type IllegalMessage struct {
	packet.Raw
	cause error
}

func newIllegalMessage(raw []byte, cause error) *IllegalMessage {
	return &IllegalMessage{Raw: packet.NewRaw(raw), cause: cause}
}

func (m *IllegalMessage) Number() MessageNumber {
	raw := m.RawData()
	if len(raw) == 0 {
		return 0
	}
	return MessageNumber(raw[0])
}

func (m *IllegalMessage) Cause() error { return m.cause }
func (m *IllegalMessage) ssh2Message() {}

func (m *IllegalMessage) String() string {
	return fmt.Sprintf("[Illegal Raw Data: 0x%s] [cause: %v]", wire.HexString(m.RawData(), ""), m.cause)
}
