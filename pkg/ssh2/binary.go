package ssh2

import (
	"bytes"
	"fmt"
	"strings"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	uint32    packet_length
//	byte      padding_length
//	byte[n1]  payload; n1 = packet_length - padding_length - 1
//	byte[n2]  random padding; n2 = padding_length
//	byte[m]   mac (Message Authentication Code - MAC); m = mac_length

const (
	packetLengthOffset  = 0
	paddingLengthOffset = packetLengthOffset + wire.IntSize
	payloadOffset       = paddingLengthOffset + 1
	minPaddingLength    = 4
	blockSize           = 8
)

// BinaryPacket is one unencrypted binary packet as exchanged before
// NEWKEYS takes effect. The MAC is empty in that phase and is not kept.
type BinaryPacket struct {
	packetLength  uint32
	paddingLength uint8
	payload       []byte
	padding       []byte
}

func DecodeBinaryPacket(raw []byte) (*BinaryPacket, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < payloadOffset {
		return nil, packet.TooShort(raw, "an SSH2 binary packet", payloadOffset)
	}
	p := &BinaryPacket{}
	p.packetLength, _ = wire.Uint32(raw, packetLengthOffset)
	p.paddingLength = raw[paddingLengthOffset]
	if p.packetLength < uint32(p.paddingLength)+1 {
		return nil, packet.Illegalf(raw, "packet_length %d cannot hold padding_length %d", p.packetLength, p.paddingLength)
	}
	if int64(len(raw)) < int64(p.packetLength)+wire.IntSize {
		return nil, packet.WrapIllegal(raw, wire.ErrBufferTooShort,
			"the raw data is too short to build this packet. %d bytes data is needed", int64(p.packetLength)+wire.IntSize)
	}
	end := wire.IntSize + int(p.packetLength)
	payloadEnd := end - int(p.paddingLength)
	p.payload = bytes.Clone(raw[payloadOffset:payloadEnd])
	p.padding = bytes.Clone(raw[payloadEnd:end])
	return p, nil
}

func (p *BinaryPacket) PacketLength() uint32 { return p.packetLength }
func (p *BinaryPacket) PaddingLength() uint8 { return p.paddingLength }
func (p *BinaryPacket) Payload() []byte      { return bytes.Clone(p.payload) }
func (p *BinaryPacket) Padding() []byte      { return bytes.Clone(p.padding) }
func (p *BinaryPacket) Len() int             { return payloadOffset + len(p.payload) + len(p.padding) }

// Message decodes the payload.
func (p *BinaryPacket) Message() Message { return NewPayload(p.payload) }

func (p *BinaryPacket) RawData() []byte {
	raw := make([]byte, 0, p.Len())
	raw = appendUint32(raw, p.packetLength)
	raw = append(raw, p.paddingLength)
	raw = append(raw, p.payload...)
	return append(raw, p.padding...)
}

func (p *BinaryPacket) String() string {
	return fmt.Sprintf("[packet_length: %d] [padding_length: %d] [payload: %d bytes] [padding: 0x%s]",
		p.packetLength, p.paddingLength, len(p.payload), wire.HexString(p.padding, ""))
}

func (p *BinaryPacket) Builder() *BinaryPacketBuilder {
	return &BinaryPacketBuilder{
		PacketLength:  p.packetLength,
		PaddingLength: p.paddingLength,
		Payload:       bytes.Clone(p.payload),
		Padding:       bytes.Clone(p.padding),
	}
}

// BinaryPacketBuilder stages a BinaryPacket. A nil Padding with
// CorrectLengthAtBuild set is filled with the zero padding that aligns the
// packet to 8 bytes.
type BinaryPacketBuilder struct {
	PacketLength  uint32
	PaddingLength uint8
	Payload       []byte
	Padding       []byte

	CorrectLengthAtBuild bool
}

func (b *BinaryPacketBuilder) Build() (*BinaryPacket, error) {
	padding := bytes.Clone(b.Padding)
	if padding == nil && b.CorrectLengthAtBuild {
		n := blockSize - (payloadOffset+len(b.Payload))%blockSize
		if n < minPaddingLength {
			n += blockSize
		}
		padding = make([]byte, n)
	}
	if len(padding) > 0xFF {
		return nil, packet.Invalidf("padding is longer than 255 bytes: %d", len(padding))
	}
	p := &BinaryPacket{
		packetLength:  b.PacketLength,
		paddingLength: b.PaddingLength,
		payload:       bytes.Clone(b.Payload),
		padding:       padding,
	}
	if b.CorrectLengthAtBuild {
		p.packetLength = uint32(p.Len() - wire.IntSize)
		p.paddingLength = uint8(len(padding))
	}
	return p, nil
}

const identificationPrefix = "SSH-"

// SplitIdentification splits the identification line ("SSH-2.0-...")
// that opens each direction of a connection from the bytes after it. ok
// is false when raw does not start with a complete identification line.
func SplitIdentification(raw []byte) (ident string, rest []byte, ok bool) {
	if !bytes.HasPrefix(raw, []byte(identificationPrefix)) {
		return "", raw, false
	}
	i := bytes.IndexByte(raw, '\n')
	if i < 0 {
		return "", raw, false
	}
	return strings.TrimRight(string(raw[:i]), "\r"), raw[i+1:], true
}
