package ipv4opt

import (
	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// NewOption decodes the option at buf[off:off+n]. The candidate types are
// tried in order and the first one with a codec decides the format; when
// none has a codec the option is Unknown. NewOption never fails: decode
// errors, including a window outside buf, yield an *IllegalOption that
// keeps the original bytes.
func NewOption(buf []byte, off, n int, types ...OptionType) Option {
	if buf == nil {
		return newIllegalOption(nil, packet.CheckNil(nil))
	}
	raw, err := wire.Slice(buf, off, n)
	if err != nil {
		window := packet.Window(buf, off, n)
		return newIllegalOption(window, packet.WrapIllegal(window, err, "option window"))
	}
	illegal := func(err error) Option { return newIllegalOption(raw, err) }

	o, err := dispatch(raw, types)
	return packet.Fallback(o, err, illegal)
}

func dispatch(raw []byte, types []OptionType) (Option, error) {
	for _, typ := range types {
		switch typ {
		case OptionTypeEndOfOptionList:
			return wrap(DecodeEndOfOptionList(raw))
		case OptionTypeNoOperation:
			return wrap(DecodeNoOperation(raw))
		case OptionTypeRecordRoute:
			return wrap(DecodeRecordRouteOption(raw))
		case OptionTypeInternetTimestamp:
			return wrap(DecodeInternetTimestampOption(raw))
		case OptionTypeSecurity:
			return wrap(DecodeSecurityOption(raw))
		case OptionTypeLooseSourceRoute:
			return wrap(DecodeLooseSourceRouteOption(raw))
		case OptionTypeStreamID:
			return wrap(DecodeStreamIDOption(raw))
		case OptionTypeStrictSourceRoute:
			return wrap(DecodeStrictSourceRouteOption(raw))
		}
	}
	return wrap(DecodeUnknownOption(raw))
}

// wrap keeps a typed nil pointer from becoming a non-nil Option.
func wrap[T Option](o T, err error) (Option, error) {
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Options splits the option area of an IPv4 header. Parsing stops after
// End of Option List, whose trailing bytes are returned as padding, or
// after the first IllegalOption.
func Options(raw []byte) (opts []Option, padding []byte) {
	off := 0
	for off < len(raw) {
		o := NewOption(raw, off, len(raw)-off, OptionType(raw[off]))
		opts = append(opts, o)
		if _, bad := o.(*IllegalOption); bad {
			return opts, nil
		}
		off += o.Len()
		if o.Type() == OptionTypeEndOfOptionList {
			return opts, raw[off:]
		}
	}
	return opts, nil
}
