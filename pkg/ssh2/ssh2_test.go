package ssh2

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// Wire structs in the form golang.org/x/crypto/ssh marshals them.
type kexInitMsg struct {
	Cookie                  [16]byte `sshtype:"20"`
	KexAlgos                []string
	ServerHostKeyAlgos      []string
	CiphersClientServer     []string
	CiphersServerClient     []string
	MACsClientServer        []string
	MACsServerClient        []string
	CompressionClientServer []string
	CompressionServerClient []string
	LanguagesClientServer   []string
	LanguagesServerClient   []string
	FirstKexFollows         bool
	Reserved                uint32
}

type disconnectMsg struct {
	Reason   uint32 `sshtype:"1"`
	Message  string
	Language string
}

type ignoreMsg struct {
	Data []byte `sshtype:"2"`
}

type unimplementedMsg struct {
	SeqNum uint32 `sshtype:"3"`
}

type debugMsg struct {
	AlwaysDisplay bool `sshtype:"4"`
	Message       string
	Language      string
}

type serviceRequestMsg struct {
	Service string `sshtype:"5"`
}

type serviceAcceptMsg struct {
	Service string `sshtype:"6"`
}

func sampleKexInit() kexInitMsg {
	m := kexInitMsg{
		KexAlgos:                []string{"curve25519-sha256", "diffie-hellman-group14-sha256"},
		ServerHostKeyAlgos:      []string{"ssh-ed25519", "rsa-sha2-512"},
		CiphersClientServer:     []string{"chacha20-poly1305@openssh.com", "aes128-ctr"},
		CiphersServerClient:     []string{"chacha20-poly1305@openssh.com", "aes128-ctr"},
		MACsClientServer:        []string{"hmac-sha2-256-etm@openssh.com"},
		MACsServerClient:        []string{"hmac-sha2-256-etm@openssh.com"},
		CompressionClientServer: []string{"none", "zlib@openssh.com"},
		CompressionServerClient: []string{"none"},
	}
	for i := range m.Cookie {
		m.Cookie[i] = byte(i)
	}
	return m
}

func TestKexInitAgainstCryptoSSH(t *testing.T) {
	want := sampleKexInit()
	raw := ssh.Marshal(&want)

	m := NewMessage(raw, MsgKexInit)
	kex, ok := m.(*KexInitMessage)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, raw, kex.RawData())
	assert.Equal(t, len(raw), kex.Len())
	assert.Equal(t, want.Cookie, kex.Cookie())
	assert.Equal(t, want.KexAlgos, kex.KexAlgorithms())
	assert.Equal(t, want.CompressionClientServer, kex.CompressionAlgorithmsClientToServer())
	assert.Empty(t, kex.LanguagesClientToServer())
	assert.False(t, kex.FirstKexPacketFollows())

	var got kexInitMsg
	require.NoError(t, ssh.Unmarshal(kex.RawData(), &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("KEXINIT mismatch (-want +got):\n%s", diff)
	}
}

func TestKexInitBuilder(t *testing.T) {
	b := &KexInitMessageBuilder{
		Cookie:                make([]byte, 16),
		KexAlgorithms:         []string{"curve25519-sha256"},
		FirstKexPacketFollows: true,
	}
	m, err := b.Build()
	require.NoError(t, err)

	var got kexInitMsg
	require.NoError(t, ssh.Unmarshal(m.RawData(), &got))
	assert.Equal(t, []string{"curve25519-sha256"}, got.KexAlgos)
	assert.True(t, got.FirstKexFollows)

	edit := m.Builder()
	edit.MACAlgorithmsClientToServer = []string{"hmac-sha2-256"}
	m2, err := edit.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"hmac-sha2-256"}, m2.MACAlgorithmsClientToServer())
	assert.Empty(t, m.MACAlgorithmsClientToServer())

	tests := []struct {
		name string
		b    KexInitMessageBuilder
	}{
		{"short cookie", KexInitMessageBuilder{Cookie: make([]byte, 15)}},
		{"empty name", KexInitMessageBuilder{Cookie: make([]byte, 16), KexAlgorithms: []string{"a", ""}}},
		{"comma in name", KexInitMessageBuilder{Cookie: make([]byte, 16), LanguagesServerToClient: []string{"en,fr"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
		})
	}
}

func TestKexInitTruncated(t *testing.T) {
	want := sampleKexInit()
	raw := ssh.Marshal(&want)

	m := NewMessage(raw[:len(raw)-3], MsgKexInit)
	ill, ok := m.(*IllegalMessage)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, MsgKexInit, ill.Number())
	assert.True(t, errors.Is(ill.Cause(), wire.ErrBufferTooShort))
	assert.Equal(t, raw[:len(raw)-3], ill.RawData())

	_, err := DecodeKexInitMessage(raw[:20])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 62")
}

func TestSimpleMessagesAgainstCryptoSSH(t *testing.T) {
	tests := []struct {
		name  string
		wire  any
		build func() (Message, error)
	}{
		{
			"disconnect",
			&disconnectMsg{Reason: 11, Message: "bye", Language: "en"},
			func() (Message, error) {
				return (&DisconnectMessageBuilder{Reason: DisconnectByApplication, Description: "bye", LanguageTag: "en"}).Build()
			},
		},
		{
			"ignore",
			&ignoreMsg{Data: []byte{1, 2, 3}},
			func() (Message, error) { return (&IgnoreMessageBuilder{Data: []byte{1, 2, 3}}).Build() },
		},
		{
			"unimplemented",
			&unimplementedMsg{SeqNum: 7},
			func() (Message, error) { return (&UnimplementedMessageBuilder{SequenceNumber: 7}).Build() },
		},
		{
			"debug",
			&debugMsg{AlwaysDisplay: true, Message: "hello", Language: ""},
			func() (Message, error) { return (&DebugMessageBuilder{AlwaysDisplay: true, Message: "hello"}).Build() },
		},
		{
			"service request",
			&serviceRequestMsg{Service: "ssh-userauth"},
			func() (Message, error) { return (&ServiceRequestMessageBuilder{ServiceName: "ssh-userauth"}).Build() },
		},
		{
			"service accept",
			&serviceAcceptMsg{Service: "ssh-userauth"},
			func() (Message, error) { return (&ServiceAcceptMessageBuilder{ServiceName: "ssh-userauth"}).Build() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := ssh.Marshal(tt.wire)
			built, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, want, built.RawData())
			assert.Equal(t, len(want), built.Len())

			decoded := NewPayload(want)
			assert.True(t, packet.Equal(built, decoded), "decoded %s", decoded)
			assert.Equal(t, built.Number(), decoded.Number())
		})
	}
}

func TestDisconnectFields(t *testing.T) {
	raw := ssh.Marshal(&disconnectMsg{Reason: 2, Message: "bad packet", Language: "en-US"})
	m, err := DecodeDisconnectMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, DisconnectProtocolError, m.Reason())
	assert.Equal(t, "bad packet", m.Description())
	assert.Equal(t, "en-US", m.LanguageTag())
	assert.Equal(t, `[Message Number: 1 (SSH_MSG_DISCONNECT)] [reason code: 2 (PROTOCOL_ERROR)] `+
		`[description: "bad packet"] [language tag: "en-US"]`, m.String())

	_, err = DecodeDisconnectMessage(raw[:len(raw)-1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 bytes data is needed")
}

func TestBooleanByteKept(t *testing.T) {
	raw := []byte{0x04, 0x02, 0, 0, 0, 0, 0, 0, 0, 0}
	m, err := DecodeDebugMessage(raw)
	require.NoError(t, err)
	assert.True(t, m.AlwaysDisplay())
	assert.Equal(t, raw, m.RawData())

	one := bytes.Clone(raw)
	one[1] = 0x01
	canonical, err := DecodeDebugMessage(one)
	require.NoError(t, err)
	assert.True(t, canonical.AlwaysDisplay())
	assert.False(t, packet.Equal(m, canonical))

	// editing through the builder writes the canonical byte
	rebuilt, err := m.Builder().Build()
	require.NoError(t, err)
	assert.True(t, packet.Equal(canonical, rebuilt))

	want := sampleKexInit()
	kexRaw := ssh.Marshal(&want)
	kexRaw[len(kexRaw)-5] = 0x02
	kex, err := DecodeKexInitMessage(kexRaw)
	require.NoError(t, err)
	assert.True(t, kex.FirstKexPacketFollows())
	assert.Equal(t, kexRaw, kex.RawData())
}

func TestServiceRequires(t *testing.T) {
	_, err := (&ServiceRequestMessageBuilder{}).Build()
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))

	_, err = DecodeServiceAcceptMessage(ssh.Marshal(&serviceRequestMsg{Service: "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "the type must be: 6 (SSH_MSG_SERVICE_ACCEPT)")
}

func TestNewKeysAndUnknown(t *testing.T) {
	m := NewMessage([]byte{21}, MsgNewKeys)
	assert.IsType(t, &NewKeysMessage{}, m)
	assert.Equal(t, "[Message Number: 21 (SSH_MSG_NEWKEYS)]", m.String())

	raw := []byte{50, 0, 0, 0, 4, 'r', 'o', 'o', 't'}
	m = NewMessage(raw, 50)
	unk, ok := m.(*UnknownMessage)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, MessageNumber(50), unk.Number())
	assert.Equal(t, raw, unk.RawData())
	assert.Equal(t, "[Message Number: 50 (unknown)] [data: 0x00000004726f6f74]", unk.String())

	m = NewMessage(nil, MsgNewKeys)
	ill, ok := m.(*IllegalMessage)
	require.True(t, ok, "got %T", m)
	assert.True(t, errors.Is(ill.Cause(), packet.ErrNilRawData))

	assert.IsType(t, &IllegalMessage{}, NewPayload([]byte{}))
}

func TestRegistryCodes(t *testing.T) {
	assert.Equal(t, []MessageNumber{1, 2, 3, 4, 5, 6, 20, 21}, Registry().Codes())
}

func TestBinaryPacket(t *testing.T) {
	b := &BinaryPacketBuilder{Payload: []byte{byte(MsgNewKeys)}, CorrectLengthAtBuild: true}
	p, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 16, p.Len())
	assert.Equal(t, uint32(12), p.PacketLength())
	assert.Equal(t, uint8(10), p.PaddingLength())

	raw := append(p.RawData(), 0xAA, 0xBB)
	back, err := DecodeBinaryPacket(raw)
	require.NoError(t, err)
	assert.True(t, packet.Equal(p, back))
	assert.IsType(t, &NewKeysMessage{}, back.Message())

	_, err = DecodeBinaryPacket(raw[:10])
	require.Error(t, err)
	assert.True(t, errors.Is(err, wire.ErrBufferTooShort))

	_, err = DecodeBinaryPacket([]byte{0, 0, 0, 2, 5, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot hold padding_length")
}

func TestSplitIdentification(t *testing.T) {
	raw := []byte("SSH-2.0-OpenSSH_9.6\r\n\x00\x00\x00\x0c")
	ident, rest, ok := SplitIdentification(raw)
	require.True(t, ok)
	assert.Equal(t, "SSH-2.0-OpenSSH_9.6", ident)
	assert.True(t, bytes.Equal([]byte{0, 0, 0, 0x0c}, rest))

	_, _, ok = SplitIdentification([]byte("SSH-2.0-partial"))
	assert.False(t, ok)
}
