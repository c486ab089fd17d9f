package ipv4opt

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	+--------+--------+--------+---------//--------+
//	|  type  | length | pointer|     route data    |
//	+--------+--------+--------+---------//--------+

const (
	pointerOffset   = headerSize
	routeOffset     = pointerOffset + 1
	routeHeaderSize = routeOffset
)

// routeOption is the layout shared by Record Route (7), Loose Source
// Route (131) and Strict Source Route (137).
type routeOption struct {
	typ     OptionType
	length  uint8
	pointer uint8
	route   []netip.Addr
}

func decodeRoute(raw []byte, typ OptionType) (routeOption, error) {
	length, err := checkHeader(raw, typ, routeHeaderSize)
	if err != nil {
		return routeOption{}, err
	}
	if (int(length)-routeHeaderSize)%wire.IPv4Size != 0 {
		return routeOption{}, packet.Illegalf(raw, "the length field must be 3 + 4n but is %d", length)
	}
	o := routeOption{typ: typ, length: length, pointer: raw[pointerOffset]}
	for off := routeOffset; off < int(length); off += wire.IPv4Size {
		addr, err := wire.IPv4(raw, off)
		if err != nil {
			return routeOption{}, packet.WrapIllegal(raw, err, "route data")
		}
		o.route = append(o.route, addr)
	}
	return o, nil
}

func (o *routeOption) Type() OptionType { return o.typ }
func (o *routeOption) Length() uint8    { return o.length }
func (o *routeOption) Pointer() uint8   { return o.pointer }
func (o *routeOption) Len() int         { return routeHeaderSize + wire.IPv4Size*len(o.route) }
func (o *routeOption) ipv4Option()      {}

// Route returns a copy of the route data.
func (o *routeOption) Route() []netip.Addr { return slices.Clone(o.route) }

func (o *routeOption) RawData() []byte {
	raw := make([]byte, o.Len())
	raw[typeOffset] = uint8(o.typ)
	raw[lengthOffset] = o.length
	raw[pointerOffset] = o.pointer
	for i, addr := range o.route {
		_ = wire.PutAddr(raw, routeOffset+i*wire.IPv4Size, addr)
	}
	return raw
}

func (o *routeOption) String() string {
	route := make([]string, len(o.route))
	for i, a := range o.route {
		route[i] = a.String()
	}
	return fmt.Sprintf("[option-type: %s] [option-length: %d bytes] [pointer: %d] [route data: %s]",
		o.typ, o.length, o.pointer, strings.Join(route, " "))
}

// RouteFields are the staged fields shared by the three route builders.
// Every Route entry must be an IPv4 address.
type RouteFields struct {
	Length  uint8
	Pointer uint8
	Route   []netip.Addr

	CorrectLengthAtBuild bool
}

func (f *RouteFields) build(typ OptionType) (routeOption, error) {
	for _, a := range f.Route {
		if !a.Is4() {
			return routeOption{}, packet.Invalidf("route entry %s is not an IPv4 address", a)
		}
	}
	o := routeOption{typ: typ, length: f.Length, pointer: f.Pointer, route: slices.Clone(f.Route)}
	if o.Len() > 0xFF {
		return routeOption{}, packet.Invalidf("too many route entries: %d", len(f.Route))
	}
	if f.CorrectLengthAtBuild {
		o.length = uint8(o.Len())
	}
	return o, nil
}

func routeFieldsOf(o *routeOption) RouteFields {
	return RouteFields{Length: o.length, Pointer: o.pointer, Route: slices.Clone(o.route)}
}

// RecordRouteOption is the Record Route option (type 7).
type RecordRouteOption struct{ routeOption }

func DecodeRecordRouteOption(raw []byte) (*RecordRouteOption, error) {
	o, err := decodeRoute(raw, OptionTypeRecordRoute)
	if err != nil {
		return nil, err
	}
	return &RecordRouteOption{o}, nil
}

func (o *RecordRouteOption) Builder() *RecordRouteOptionBuilder {
	return &RecordRouteOptionBuilder{routeFieldsOf(&o.routeOption)}
}

type RecordRouteOptionBuilder struct{ RouteFields }

func (b *RecordRouteOptionBuilder) Build() (*RecordRouteOption, error) {
	o, err := b.build(OptionTypeRecordRoute)
	if err != nil {
		return nil, err
	}
	return &RecordRouteOption{o}, nil
}

// LooseSourceRouteOption is the Loose Source and Record Route option (type 131).
type LooseSourceRouteOption struct{ routeOption }

func DecodeLooseSourceRouteOption(raw []byte) (*LooseSourceRouteOption, error) {
	o, err := decodeRoute(raw, OptionTypeLooseSourceRoute)
	if err != nil {
		return nil, err
	}
	return &LooseSourceRouteOption{o}, nil
}

func (o *LooseSourceRouteOption) Builder() *LooseSourceRouteOptionBuilder {
	return &LooseSourceRouteOptionBuilder{routeFieldsOf(&o.routeOption)}
}

type LooseSourceRouteOptionBuilder struct{ RouteFields }

func (b *LooseSourceRouteOptionBuilder) Build() (*LooseSourceRouteOption, error) {
	o, err := b.build(OptionTypeLooseSourceRoute)
	if err != nil {
		return nil, err
	}
	return &LooseSourceRouteOption{o}, nil
}

// StrictSourceRouteOption is the Strict Source and Record Route option (type 137).
type StrictSourceRouteOption struct{ routeOption }

func DecodeStrictSourceRouteOption(raw []byte) (*StrictSourceRouteOption, error) {
	o, err := decodeRoute(raw, OptionTypeStrictSourceRoute)
	if err != nil {
		return nil, err
	}
	return &StrictSourceRouteOption{o}, nil
}

func (o *StrictSourceRouteOption) Builder() *StrictSourceRouteOptionBuilder {
	return &StrictSourceRouteOptionBuilder{routeFieldsOf(&o.routeOption)}
}

type StrictSourceRouteOptionBuilder struct{ RouteFields }

func (b *StrictSourceRouteOptionBuilder) Build() (*StrictSourceRouteOption, error) {
	o, err := b.build(OptionTypeStrictSourceRoute)
	if err != nil {
		return nil, err
	}
	return &StrictSourceRouteOption{o}, nil
}
