package ssh2

// NewKeysMessage is SSH_MSG_NEWKEYS. It has no fields.
type NewKeysMessage struct{}

func DecodeNewKeysMessage(raw []byte) (*NewKeysMessage, error) {
	if err := checkHeader(raw, MsgNewKeys, numberSize); err != nil {
		return nil, err
	}
	return &NewKeysMessage{}, nil
}

func (m *NewKeysMessage) Number() MessageNumber { return MsgNewKeys }
func (m *NewKeysMessage) Len() int              { return numberSize }
func (m *NewKeysMessage) RawData() []byte       { return []byte{uint8(MsgNewKeys)} }
func (m *NewKeysMessage) String() string        { return "[Message Number: " + MsgNewKeys.String() + "]" }
func (m *NewKeysMessage) ssh2Message()          {}
