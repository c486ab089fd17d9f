package ipv4opt

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	streamIDOffset     = headerSize
	streamIDOptionSize = streamIDOffset + wire.ShortSize
)

// StreamIDOption is the Stream Identifier option (type 136).
type StreamIDOption struct {
	length   uint8
	streamID uint16
}

func DecodeStreamIDOption(raw []byte) (*StreamIDOption, error) {
	length, err := checkHeader(raw, OptionTypeStreamID, streamIDOptionSize)
	if err != nil {
		return nil, err
	}
	if length != streamIDOptionSize {
		return nil, packet.Illegalf(raw, "invalid value of length field: %d", length)
	}
	id, _ := wire.Uint16(raw, streamIDOffset)
	return &StreamIDOption{length: length, streamID: id}, nil
}

func (o *StreamIDOption) Type() OptionType { return OptionTypeStreamID }
func (o *StreamIDOption) Length() uint8    { return o.length }
func (o *StreamIDOption) StreamID() uint16 { return o.streamID }
func (o *StreamIDOption) Len() int         { return streamIDOptionSize }
func (o *StreamIDOption) ipv4Option()      {}

func (o *StreamIDOption) RawData() []byte {
	raw := make([]byte, streamIDOptionSize)
	raw[typeOffset] = uint8(OptionTypeStreamID)
	raw[lengthOffset] = o.length
	_ = wire.PutUint16(raw, streamIDOffset, o.streamID)
	return raw
}

func (o *StreamIDOption) String() string {
	return fmt.Sprintf("[option-type: %s] [option-length: %d bytes] [stream ID: %d]",
		OptionTypeStreamID, o.length, o.streamID)
}

func (o *StreamIDOption) Builder() *StreamIDOptionBuilder {
	return &StreamIDOptionBuilder{Length: o.length, StreamID: o.streamID}
}

type StreamIDOptionBuilder struct {
	Length   uint8
	StreamID uint16

	CorrectLengthAtBuild bool
}

func (b *StreamIDOptionBuilder) Build() (*StreamIDOption, error) {
	o := &StreamIDOption{length: b.Length, streamID: b.StreamID}
	if b.CorrectLengthAtBuild {
		o.length = uint8(o.Len())
	}
	return o, nil
}
