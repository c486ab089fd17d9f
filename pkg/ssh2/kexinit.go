package ssh2

import (
	"fmt"
	"slices"
	"strings"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	byte         SSH_MSG_KEXINIT
//	byte[16]     cookie (random bytes)
//	name-list    kex_algorithms
//	name-list    server_host_key_algorithms
//	name-list    encryption_algorithms_client_to_server
//	name-list    encryption_algorithms_server_to_client
//	name-list    mac_algorithms_client_to_server
//	name-list    mac_algorithms_server_to_client
//	name-list    compression_algorithms_client_to_server
//	name-list    compression_algorithms_server_to_client
//	name-list    languages_client_to_server
//	name-list    languages_server_to_client
//	boolean      first_kex_packet_follows
//	uint32       0 (reserved for future extension)

const (
	CookieSize     = 16
	nameListCount  = 10
	kexInitMinSize = numberSize + CookieSize + nameListCount*wire.IntSize + 1 + wire.IntSize
)

var nameListFields = [nameListCount]string{
	"kex_algorithms",
	"server_host_key_algorithms",
	"encryption_algorithms_client_to_server",
	"encryption_algorithms_server_to_client",
	"mac_algorithms_client_to_server",
	"mac_algorithms_server_to_client",
	"compression_algorithms_client_to_server",
	"compression_algorithms_server_to_client",
	"languages_client_to_server",
	"languages_server_to_client",
}

// KexInitMessage is SSH_MSG_KEXINIT.
type KexInitMessage struct {
	cookie                [CookieSize]byte
	lists                 [nameListCount][]string
	firstKexPacketFollows uint8
	reserved              uint32
}

func DecodeKexInitMessage(raw []byte) (*KexInitMessage, error) {
	if err := checkHeader(raw, MsgKexInit, kexInitMinSize); err != nil {
		return nil, err
	}
	r := &reader{raw: raw, off: numberSize}
	m := &KexInitMessage{}
	copy(m.cookie[:], r.bytes("cookie", CookieSize))
	for i, field := range nameListFields {
		m.lists[i] = r.nameList(field)
	}
	m.firstKexPacketFollows = r.boolean("first_kex_packet_follows")
	m.reserved = r.uint32("reserved")
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (m *KexInitMessage) Number() MessageNumber { return MsgKexInit }
func (m *KexInitMessage) Cookie() [16]byte      { return m.cookie }
func (m *KexInitMessage) ssh2Message()          {}

func (m *KexInitMessage) KexAlgorithms() []string { return slices.Clone(m.lists[0]) }
func (m *KexInitMessage) ServerHostKeyAlgorithms() []string {
	return slices.Clone(m.lists[1])
}
func (m *KexInitMessage) EncryptionAlgorithmsClientToServer() []string {
	return slices.Clone(m.lists[2])
}
func (m *KexInitMessage) EncryptionAlgorithmsServerToClient() []string {
	return slices.Clone(m.lists[3])
}
func (m *KexInitMessage) MACAlgorithmsClientToServer() []string { return slices.Clone(m.lists[4]) }
func (m *KexInitMessage) MACAlgorithmsServerToClient() []string { return slices.Clone(m.lists[5]) }
func (m *KexInitMessage) CompressionAlgorithmsClientToServer() []string {
	return slices.Clone(m.lists[6])
}
func (m *KexInitMessage) CompressionAlgorithmsServerToClient() []string {
	return slices.Clone(m.lists[7])
}
func (m *KexInitMessage) LanguagesClientToServer() []string { return slices.Clone(m.lists[8]) }
func (m *KexInitMessage) LanguagesServerToClient() []string { return slices.Clone(m.lists[9]) }
func (m *KexInitMessage) FirstKexPacketFollows() bool       { return m.firstKexPacketFollows != 0 }
func (m *KexInitMessage) Reserved() uint32                  { return m.reserved }

func (m *KexInitMessage) Len() int {
	size := numberSize + CookieSize + 1 + wire.IntSize
	for _, l := range m.lists {
		size += nameListSize(l)
	}
	return size
}

func (m *KexInitMessage) RawData() []byte {
	raw := make([]byte, 0, m.Len())
	raw = append(raw, uint8(MsgKexInit))
	raw = append(raw, m.cookie[:]...)
	for _, l := range m.lists {
		raw = appendNameList(raw, l)
	}
	raw = append(raw, m.firstKexPacketFollows)
	return appendUint32(raw, m.reserved)
}

func (m *KexInitMessage) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Message Number: %s] [cookie: 0x%s]", MsgKexInit, wire.HexString(m.cookie[:], ""))
	for i, field := range nameListFields {
		fmt.Fprintf(&sb, " [%s: %s]", field, strings.Join(m.lists[i], ","))
	}
	fmt.Fprintf(&sb, " [first_kex_packet_follows: %t] [reserved: %d]", m.FirstKexPacketFollows(), m.reserved)
	return sb.String()
}

func (m *KexInitMessage) Builder() *KexInitMessageBuilder {
	return &KexInitMessageBuilder{
		Cookie:                              m.cookie[:],
		KexAlgorithms:                       m.KexAlgorithms(),
		ServerHostKeyAlgorithms:             m.ServerHostKeyAlgorithms(),
		EncryptionAlgorithmsClientToServer:  m.EncryptionAlgorithmsClientToServer(),
		EncryptionAlgorithmsServerToClient:  m.EncryptionAlgorithmsServerToClient(),
		MACAlgorithmsClientToServer:         m.MACAlgorithmsClientToServer(),
		MACAlgorithmsServerToClient:         m.MACAlgorithmsServerToClient(),
		CompressionAlgorithmsClientToServer: m.CompressionAlgorithmsClientToServer(),
		CompressionAlgorithmsServerToClient: m.CompressionAlgorithmsServerToClient(),
		LanguagesClientToServer:             m.LanguagesClientToServer(),
		LanguagesServerToClient:             m.LanguagesServerToClient(),
		FirstKexPacketFollows:               m.FirstKexPacketFollows(),
		Reserved:                            m.reserved,
	}
}

// KexInitMessageBuilder stages a KexInitMessage. Cookie must be exactly
// 16 bytes.
type KexInitMessageBuilder struct {
	Cookie                              []byte
	KexAlgorithms                       []string
	ServerHostKeyAlgorithms             []string
	EncryptionAlgorithmsClientToServer  []string
	EncryptionAlgorithmsServerToClient  []string
	MACAlgorithmsClientToServer         []string
	MACAlgorithmsServerToClient         []string
	CompressionAlgorithmsClientToServer []string
	CompressionAlgorithmsServerToClient []string
	LanguagesClientToServer             []string
	LanguagesServerToClient             []string
	FirstKexPacketFollows               bool
	Reserved                            uint32
}

func (b *KexInitMessageBuilder) Build() (*KexInitMessage, error) {
	if len(b.Cookie) != CookieSize {
		return nil, packet.Invalidf("cookie must be %d bytes, but is %d", CookieSize, len(b.Cookie))
	}
	m := &KexInitMessage{firstKexPacketFollows: booleanByte(b.FirstKexPacketFollows), reserved: b.Reserved}
	copy(m.cookie[:], b.Cookie)
	lists := [nameListCount][]string{
		b.KexAlgorithms,
		b.ServerHostKeyAlgorithms,
		b.EncryptionAlgorithmsClientToServer,
		b.EncryptionAlgorithmsServerToClient,
		b.MACAlgorithmsClientToServer,
		b.MACAlgorithmsServerToClient,
		b.CompressionAlgorithmsClientToServer,
		b.CompressionAlgorithmsServerToClient,
		b.LanguagesClientToServer,
		b.LanguagesServerToClient,
	}
	for i, l := range lists {
		if err := checkNameList(nameListFields[i], l); err != nil {
			return nil, err
		}
		m.lists[i] = slices.Clone(l)
	}
	return m, nil
}
