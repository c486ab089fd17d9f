package ndp

import (
	"sync"

	"firestige.xyz/otus-dissect/pkg/packet"
)

func register[T Option](decode func([]byte) (T, error)) packet.DecodeFunc[Option] {
	return func(raw []byte) (Option, error) {
		o, err := decode(raw)
		if err != nil {
			return nil, err
		}
		return o, nil
	}
}

var registry = sync.OnceValue(func() *packet.Registry[OptionType, Option] {
	return packet.NewRegistry(map[OptionType]packet.DecodeFunc[Option]{
		OptionTypeSourceLinkLayerAddress: register(DecodeSourceLinkLayerAddressOption),
		OptionTypeTargetLinkLayerAddress: register(DecodeTargetLinkLayerAddressOption),
		OptionTypePrefixInformation:      register(DecodePrefixInformationOption),
		OptionTypeRedirectedHeader:       register(DecodeRedirectedHeaderOption),
		OptionTypeMTU:                    register(DecodeMTUOption),
	})
})

// Registry exposes the read-only type registry.
func Registry() *packet.Registry[OptionType, Option] { return registry() }

// NewOption decodes raw as an option of type typ. It never fails: a
// registered type whose bytes do not validate yields an *IllegalOption,
// and an unregistered type yields an *UnknownOption (or *IllegalOption
// if even the generic header is broken).
func NewOption(raw []byte, typ OptionType) Option {
	illegal := func(err error) Option { return newIllegalOption(raw, err) }
	if decode, ok := registry().Lookup(typ); ok {
		o, err := decode(raw)
		return packet.Fallback(o, err, illegal)
	}
	return NewUnknownOption(raw)
}

// NewUnknownOption wraps raw as an UnknownOption, or an IllegalOption if
// the type/length header cannot be honoured.
func NewUnknownOption(raw []byte) Option {
	o, err := DecodeUnknownOption(raw)
	if err != nil {
		return newIllegalOption(raw, err)
	}
	return o
}

// Options splits a buffer holding consecutive ND options, as found after
// the fixed part of an ICMPv6 ND message. Parsing stops after the first
// IllegalOption, which carries the remaining bytes.
func Options(raw []byte) []Option {
	var opts []Option
	for len(raw) > 0 {
		o := NewOption(raw, OptionType(raw[typeOffset]))
		opts = append(opts, o)
		if _, bad := o.(*IllegalOption); bad {
			break
		}
		raw = raw[o.Len():]
	}
	return opts
}
