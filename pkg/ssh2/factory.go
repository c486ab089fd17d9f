package ssh2

import (
	"sync"

	"firestige.xyz/otus-dissect/pkg/packet"
)

func register[T Message](decode func([]byte) (T, error)) packet.DecodeFunc[Message] {
	return func(raw []byte) (Message, error) {
		m, err := decode(raw)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

var registry = sync.OnceValue(func() *packet.Registry[MessageNumber, Message] {
	return packet.NewRegistry(map[MessageNumber]packet.DecodeFunc[Message]{
		MsgDisconnect:     register(DecodeDisconnectMessage),
		MsgIgnore:         register(DecodeIgnoreMessage),
		MsgUnimplemented:  register(DecodeUnimplementedMessage),
		MsgDebug:          register(DecodeDebugMessage),
		MsgServiceRequest: register(DecodeServiceRequestMessage),
		MsgServiceAccept:  register(DecodeServiceAcceptMessage),
		MsgKexInit:        register(DecodeKexInitMessage),
		MsgNewKeys:        register(DecodeNewKeysMessage),
	})
})

func Registry() *packet.Registry[MessageNumber, Message] { return registry() }

// NewMessage decodes raw as a message with number num. It never fails:
// bytes a registered codec rejects become an *IllegalMessage and an
// unregistered number an *UnknownMessage.
func NewMessage(raw []byte, num MessageNumber) Message {
	illegal := func(err error) Message { return newIllegalMessage(raw, err) }
	decode, ok := registry().Lookup(num)
	if !ok {
		decode = register(DecodeUnknownMessage)
	}
	m, err := decode(raw)
	return packet.Fallback(m, err, illegal)
}

// NewPayload decodes a binary packet payload using its own first byte as
// the message number.
func NewPayload(payload []byte) Message {
	if len(payload) == 0 {
		return NewMessage(payload, 0)
	}
	return NewMessage(payload, MessageNumber(payload[0]))
}
