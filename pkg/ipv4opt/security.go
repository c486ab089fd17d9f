package ipv4opt

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	+--------+--------+---//---+---//---+---//---+---//---+
//	|10000010|00001011|SSS  SSS|CCC  CCC|HHH  HHH|  TCC   |
//	+--------+--------+---//---+---//---+---//---+---//---+

const (
	securityOffset     = headerSize
	compartmentsOffset = securityOffset + wire.ShortSize
	restrictionsOffset = compartmentsOffset + wire.ShortSize
	tccOffset          = restrictionsOffset + wire.ShortSize
	tccSize            = 3
	securityOptionSize = tccOffset + tccSize
)

// SecurityLevel is the RFC 791 security field.
type SecurityLevel uint16

const (
	SecurityUnclassified SecurityLevel = 0x0000
	SecurityConfidential SecurityLevel = 0xF135
	SecurityEFTO         SecurityLevel = 0x789A
	SecurityMMMM         SecurityLevel = 0xBC4D
	SecurityPROG         SecurityLevel = 0x5E26
	SecurityRestricted   SecurityLevel = 0xAF13
	SecuritySecret       SecurityLevel = 0xD788
	SecurityTopSecret    SecurityLevel = 0x6BC5
)

var securityLevelNames = map[SecurityLevel]string{
	SecurityUnclassified: "Unclassified",
	SecurityConfidential: "Confidential",
	SecurityEFTO:         "EFTO",
	SecurityMMMM:         "MMMM",
	SecurityPROG:         "PROG",
	SecurityRestricted:   "Restricted",
	SecuritySecret:       "Secret",
	SecurityTopSecret:    "Top Secret",
}

func (s SecurityLevel) String() string { return packet.Named(s, securityLevelNames) }

// SecurityOption is the RFC 791 Security option (type 130).
type SecurityOption struct {
	length               uint8
	security             SecurityLevel
	compartments         uint16
	handlingRestrictions uint16
	tcc                  [tccSize]byte
}

func DecodeSecurityOption(raw []byte) (*SecurityOption, error) {
	length, err := checkHeader(raw, OptionTypeSecurity, securityOptionSize)
	if err != nil {
		return nil, err
	}
	if length != securityOptionSize {
		return nil, packet.Illegalf(raw, "invalid value of length field: %d", length)
	}
	o := &SecurityOption{length: length}
	security, _ := wire.Uint16(raw, securityOffset)
	o.security = SecurityLevel(security)
	o.compartments, _ = wire.Uint16(raw, compartmentsOffset)
	o.handlingRestrictions, _ = wire.Uint16(raw, restrictionsOffset)
	copy(o.tcc[:], raw[tccOffset:securityOptionSize])
	return o, nil
}

func (o *SecurityOption) Type() OptionType                 { return OptionTypeSecurity }
func (o *SecurityOption) Length() uint8                    { return o.length }
func (o *SecurityOption) Security() SecurityLevel          { return o.security }
func (o *SecurityOption) Compartments() uint16             { return o.compartments }
func (o *SecurityOption) HandlingRestrictions() uint16     { return o.handlingRestrictions }
func (o *SecurityOption) TransmissionControlCode() [3]byte { return o.tcc }
func (o *SecurityOption) Len() int                         { return securityOptionSize }
func (o *SecurityOption) ipv4Option()                      {}

func (o *SecurityOption) RawData() []byte {
	raw := make([]byte, securityOptionSize)
	raw[typeOffset] = uint8(OptionTypeSecurity)
	raw[lengthOffset] = o.length
	_ = wire.PutUint16(raw, securityOffset, uint16(o.security))
	_ = wire.PutUint16(raw, compartmentsOffset, o.compartments)
	_ = wire.PutUint16(raw, restrictionsOffset, o.handlingRestrictions)
	copy(raw[tccOffset:], o.tcc[:])
	return raw
}

func (o *SecurityOption) String() string {
	return fmt.Sprintf("[option-type: %s] [option-length: %d bytes] [security: %s] [compartments: %d] "+
		"[handling restrictions: %d] [tcc: %s]",
		OptionTypeSecurity, o.length, o.security, o.compartments, o.handlingRestrictions, wire.HexString(o.tcc[:], " "))
}

func (o *SecurityOption) Builder() *SecurityOptionBuilder {
	return &SecurityOptionBuilder{
		Length:               o.length,
		Security:             o.security,
		Compartments:         o.compartments,
		HandlingRestrictions: o.handlingRestrictions,
		TCC:                  o.tcc,
	}
}

type SecurityOptionBuilder struct {
	Length               uint8
	Security             SecurityLevel
	Compartments         uint16
	HandlingRestrictions uint16
	TCC                  [3]byte

	CorrectLengthAtBuild bool
}

func (b *SecurityOptionBuilder) Build() (*SecurityOption, error) {
	o := &SecurityOption{
		length:               b.Length,
		security:             b.Security,
		compartments:         b.Compartments,
		handlingRestrictions: b.HandlingRestrictions,
		tcc:                  b.TCC,
	}
	if b.CorrectLengthAtBuild {
		o.length = uint8(o.Len())
	}
	return o, nil
}
