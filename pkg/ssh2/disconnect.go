package ssh2

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// DisconnectReason is the reason code of SSH_MSG_DISCONNECT.
type DisconnectReason uint32

const (
	DisconnectHostNotAllowedToConnect     DisconnectReason = 1
	DisconnectProtocolError               DisconnectReason = 2
	DisconnectKeyExchangeFailed           DisconnectReason = 3
	DisconnectReserved                    DisconnectReason = 4
	DisconnectMACError                    DisconnectReason = 5
	DisconnectCompressionError            DisconnectReason = 6
	DisconnectServiceNotAvailable         DisconnectReason = 7
	DisconnectProtocolVersionNotSupported DisconnectReason = 8
	DisconnectHostKeyNotVerifiable        DisconnectReason = 9
	DisconnectConnectionLost              DisconnectReason = 10
	DisconnectByApplication               DisconnectReason = 11
	DisconnectTooManyConnections          DisconnectReason = 12
	DisconnectAuthCancelledByUser         DisconnectReason = 13
	DisconnectNoMoreAuthMethodsAvailable  DisconnectReason = 14
	DisconnectIllegalUserName             DisconnectReason = 15
)

var disconnectReasonNames = map[DisconnectReason]string{
	DisconnectHostNotAllowedToConnect:     "HOST_NOT_ALLOWED_TO_CONNECT",
	DisconnectProtocolError:               "PROTOCOL_ERROR",
	DisconnectKeyExchangeFailed:           "KEY_EXCHANGE_FAILED",
	DisconnectReserved:                    "RESERVED",
	DisconnectMACError:                    "MAC_ERROR",
	DisconnectCompressionError:            "COMPRESSION_ERROR",
	DisconnectServiceNotAvailable:         "SERVICE_NOT_AVAILABLE",
	DisconnectProtocolVersionNotSupported: "PROTOCOL_VERSION_NOT_SUPPORTED",
	DisconnectHostKeyNotVerifiable:        "HOST_KEY_NOT_VERIFIABLE",
	DisconnectConnectionLost:              "CONNECTION_LOST",
	DisconnectByApplication:               "BY_APPLICATION",
	DisconnectTooManyConnections:          "TOO_MANY_CONNECTIONS",
	DisconnectAuthCancelledByUser:         "AUTH_CANCELLED_BY_USER",
	DisconnectNoMoreAuthMethodsAvailable:  "NO_MORE_AUTH_METHODS_AVAILABLE",
	DisconnectIllegalUserName:             "ILLEGAL_USER_NAME",
}

func (r DisconnectReason) String() string { return packet.Named(r, disconnectReasonNames) }

const disconnectMinSize = numberSize + wire.IntSize + 2*wire.IntSize

// DisconnectMessage is SSH_MSG_DISCONNECT.
type DisconnectMessage struct {
	reason      DisconnectReason
	description string
	languageTag string
}

func DecodeDisconnectMessage(raw []byte) (*DisconnectMessage, error) {
	if err := checkHeader(raw, MsgDisconnect, disconnectMinSize); err != nil {
		return nil, err
	}
	r := &reader{raw: raw, off: numberSize}
	m := &DisconnectMessage{
		reason:      DisconnectReason(r.uint32("reason code")),
		description: string(r.string("description")),
		languageTag: string(r.string("language tag")),
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (m *DisconnectMessage) Number() MessageNumber    { return MsgDisconnect }
func (m *DisconnectMessage) Reason() DisconnectReason { return m.reason }
func (m *DisconnectMessage) Description() string      { return m.description }
func (m *DisconnectMessage) LanguageTag() string      { return m.languageTag }
func (m *DisconnectMessage) ssh2Message()             {}

func (m *DisconnectMessage) Len() int {
	return numberSize + wire.IntSize + stringSize([]byte(m.description)) + stringSize([]byte(m.languageTag))
}

func (m *DisconnectMessage) RawData() []byte {
	raw := make([]byte, 0, m.Len())
	raw = append(raw, uint8(MsgDisconnect))
	raw = appendUint32(raw, uint32(m.reason))
	raw = appendString(raw, []byte(m.description))
	return appendString(raw, []byte(m.languageTag))
}

func (m *DisconnectMessage) String() string {
	return fmt.Sprintf("[Message Number: %s] [reason code: %s] [description: %q] [language tag: %q]",
		MsgDisconnect, m.reason, m.description, m.languageTag)
}

func (m *DisconnectMessage) Builder() *DisconnectMessageBuilder {
	return &DisconnectMessageBuilder{Reason: m.reason, Description: m.description, LanguageTag: m.languageTag}
}

type DisconnectMessageBuilder struct {
	Reason      DisconnectReason
	Description string
	LanguageTag string
}

func (b *DisconnectMessageBuilder) Build() (*DisconnectMessage, error) {
	return &DisconnectMessage{reason: b.Reason, description: b.Description, languageTag: b.LanguageTag}, nil
}
