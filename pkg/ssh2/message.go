// Package ssh2 decodes and encodes SSH2 transport layer messages
// (RFC 4253). A message is the payload of one binary packet and starts
// with its message number.
package ssh2

import (
	"firestige.xyz/otus-dissect/pkg/packet"
)

// MessageNumber is the first byte of a message payload.
type MessageNumber uint8

const (
	MsgDisconnect     MessageNumber = 1
	MsgIgnore         MessageNumber = 2
	MsgUnimplemented  MessageNumber = 3
	MsgDebug          MessageNumber = 4
	MsgServiceRequest MessageNumber = 5
	MsgServiceAccept  MessageNumber = 6
	MsgKexInit        MessageNumber = 20
	MsgNewKeys        MessageNumber = 21
)

var messageNumberNames = map[MessageNumber]string{
	MsgDisconnect:     "SSH_MSG_DISCONNECT",
	MsgIgnore:         "SSH_MSG_IGNORE",
	MsgUnimplemented:  "SSH_MSG_UNIMPLEMENTED",
	MsgDebug:          "SSH_MSG_DEBUG",
	MsgServiceRequest: "SSH_MSG_SERVICE_REQUEST",
	MsgServiceAccept:  "SSH_MSG_SERVICE_ACCEPT",
	MsgKexInit:        "SSH_MSG_KEXINIT",
	MsgNewKeys:        "SSH_MSG_NEWKEYS",
}

func (n MessageNumber) String() string { return packet.Named(n, messageNumberNames) }

const numberSize = 1

// Message is one decoded transport message.
type Message interface {
	packet.Unit
	Number() MessageNumber
	ssh2Message()
}

// checkHeader validates the buffer length and the message number.
func checkHeader(raw []byte, num MessageNumber, min int) error {
	if err := packet.CheckNil(raw); err != nil {
		return err
	}
	if len(raw) < min {
		return packet.TooShort(raw, "an SSH2 "+messageNumberNames[num]+" message", min)
	}
	if MessageNumber(raw[0]) != num {
		return packet.TypeMismatch(raw, num)
	}
	return nil
}
