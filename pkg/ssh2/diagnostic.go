package ssh2

import (
	"bytes"
	"fmt"

	"firestige.xyz/otus-dissect/pkg/wire"
)

// IgnoreMessage is SSH_MSG_IGNORE.
type IgnoreMessage struct {
	data []byte
}

func DecodeIgnoreMessage(raw []byte) (*IgnoreMessage, error) {
	if err := checkHeader(raw, MsgIgnore, numberSize+wire.IntSize); err != nil {
		return nil, err
	}
	r := &reader{raw: raw, off: numberSize}
	m := &IgnoreMessage{data: r.string("data")}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (m *IgnoreMessage) Number() MessageNumber { return MsgIgnore }
func (m *IgnoreMessage) Data() []byte          { return bytes.Clone(m.data) }
func (m *IgnoreMessage) Len() int              { return numberSize + stringSize(m.data) }
func (m *IgnoreMessage) ssh2Message()          {}

func (m *IgnoreMessage) RawData() []byte {
	return appendString([]byte{uint8(MsgIgnore)}, m.data)
}

func (m *IgnoreMessage) String() string {
	return fmt.Sprintf("[Message Number: %s] [data: 0x%s]", MsgIgnore, wire.HexString(m.data, ""))
}

func (m *IgnoreMessage) Builder() *IgnoreMessageBuilder {
	return &IgnoreMessageBuilder{Data: bytes.Clone(m.data)}
}

type IgnoreMessageBuilder struct {
	Data []byte
}

func (b *IgnoreMessageBuilder) Build() (*IgnoreMessage, error) {
	return &IgnoreMessage{data: bytes.Clone(b.Data)}, nil
}

// UnimplementedMessage is SSH_MSG_UNIMPLEMENTED.
type UnimplementedMessage struct {
	sequenceNumber uint32
}

func DecodeUnimplementedMessage(raw []byte) (*UnimplementedMessage, error) {
	if err := checkHeader(raw, MsgUnimplemented, numberSize+wire.IntSize); err != nil {
		return nil, err
	}
	seq, _ := wire.Uint32(raw, numberSize)
	return &UnimplementedMessage{sequenceNumber: seq}, nil
}

func (m *UnimplementedMessage) Number() MessageNumber  { return MsgUnimplemented }
func (m *UnimplementedMessage) SequenceNumber() uint32 { return m.sequenceNumber }
func (m *UnimplementedMessage) Len() int               { return numberSize + wire.IntSize }
func (m *UnimplementedMessage) ssh2Message()           {}

func (m *UnimplementedMessage) RawData() []byte {
	return appendUint32([]byte{uint8(MsgUnimplemented)}, m.sequenceNumber)
}

func (m *UnimplementedMessage) String() string {
	return fmt.Sprintf("[Message Number: %s] [packet sequence number: %d]", MsgUnimplemented, m.sequenceNumber)
}

func (m *UnimplementedMessage) Builder() *UnimplementedMessageBuilder {
	return &UnimplementedMessageBuilder{SequenceNumber: m.sequenceNumber}
}

type UnimplementedMessageBuilder struct {
	SequenceNumber uint32
}

func (b *UnimplementedMessageBuilder) Build() (*UnimplementedMessage, error) {
	return &UnimplementedMessage{sequenceNumber: b.SequenceNumber}, nil
}

// DebugMessage is SSH_MSG_DEBUG.
type DebugMessage struct {
	alwaysDisplay uint8
	message       string
	languageTag   string
}

func DecodeDebugMessage(raw []byte) (*DebugMessage, error) {
	if err := checkHeader(raw, MsgDebug, numberSize+1+2*wire.IntSize); err != nil {
		return nil, err
	}
	r := &reader{raw: raw, off: numberSize}
	m := &DebugMessage{
		alwaysDisplay: r.boolean("always_display"),
		message:       string(r.string("message")),
		languageTag:   string(r.string("language tag")),
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (m *DebugMessage) Number() MessageNumber { return MsgDebug }
func (m *DebugMessage) AlwaysDisplay() bool   { return m.alwaysDisplay != 0 }
func (m *DebugMessage) Message() string       { return m.message }
func (m *DebugMessage) LanguageTag() string   { return m.languageTag }
func (m *DebugMessage) ssh2Message()          {}

func (m *DebugMessage) Len() int {
	return numberSize + 1 + stringSize([]byte(m.message)) + stringSize([]byte(m.languageTag))
}

func (m *DebugMessage) RawData() []byte {
	raw := make([]byte, 0, m.Len())
	raw = append(raw, uint8(MsgDebug))
	raw = append(raw, m.alwaysDisplay)
	raw = appendString(raw, []byte(m.message))
	return appendString(raw, []byte(m.languageTag))
}

func (m *DebugMessage) String() string {
	return fmt.Sprintf("[Message Number: %s] [always_display: %t] [message: %q] [language tag: %q]",
		MsgDebug, m.AlwaysDisplay(), m.message, m.languageTag)
}

func (m *DebugMessage) Builder() *DebugMessageBuilder {
	return &DebugMessageBuilder{AlwaysDisplay: m.AlwaysDisplay(), Message: m.message, LanguageTag: m.languageTag}
}

type DebugMessageBuilder struct {
	AlwaysDisplay bool
	Message       string
	LanguageTag   string
}

func (b *DebugMessageBuilder) Build() (*DebugMessage, error) {
	return &DebugMessage{alwaysDisplay: booleanByte(b.AlwaysDisplay), message: b.Message, languageTag: b.LanguageTag}, nil
}
