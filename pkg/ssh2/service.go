package ssh2

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// serviceMessage is the layout shared by SERVICE_REQUEST and
// SERVICE_ACCEPT.
type serviceMessage struct {
	num         MessageNumber
	serviceName string
}

func decodeServiceMessage(raw []byte, num MessageNumber) (serviceMessage, error) {
	if err := checkHeader(raw, num, numberSize+wire.IntSize); err != nil {
		return serviceMessage{}, err
	}
	r := &reader{raw: raw, off: numberSize}
	m := serviceMessage{num: num, serviceName: string(r.string("service name"))}
	if r.err != nil {
		return serviceMessage{}, r.err
	}
	return m, nil
}

func (m *serviceMessage) Number() MessageNumber { return m.num }
func (m *serviceMessage) ServiceName() string   { return m.serviceName }
func (m *serviceMessage) Len() int              { return numberSize + stringSize([]byte(m.serviceName)) }
func (m *serviceMessage) ssh2Message()          {}

func (m *serviceMessage) RawData() []byte {
	return appendString([]byte{uint8(m.num)}, []byte(m.serviceName))
}

func (m *serviceMessage) String() string {
	return fmt.Sprintf("[Message Number: %s] [service name: %s]", m.num, m.serviceName)
}

func buildServiceMessage(num MessageNumber, name string) (serviceMessage, error) {
	if name == "" {
		return serviceMessage{}, packet.Invalidf("%s needs a service name", messageNumberNames[num])
	}
	return serviceMessage{num: num, serviceName: name}, nil
}

// ServiceRequestMessage is SSH_MSG_SERVICE_REQUEST.
type ServiceRequestMessage struct{ serviceMessage }

func DecodeServiceRequestMessage(raw []byte) (*ServiceRequestMessage, error) {
	m, err := decodeServiceMessage(raw, MsgServiceRequest)
	if err != nil {
		return nil, err
	}
	return &ServiceRequestMessage{m}, nil
}

func (m *ServiceRequestMessage) Builder() *ServiceRequestMessageBuilder {
	return &ServiceRequestMessageBuilder{ServiceName: m.serviceName}
}

type ServiceRequestMessageBuilder struct {
	ServiceName string
}

func (b *ServiceRequestMessageBuilder) Build() (*ServiceRequestMessage, error) {
	m, err := buildServiceMessage(MsgServiceRequest, b.ServiceName)
	if err != nil {
		return nil, err
	}
	return &ServiceRequestMessage{m}, nil
}

// ServiceAcceptMessage is SSH_MSG_SERVICE_ACCEPT.
type ServiceAcceptMessage struct{ serviceMessage }

func DecodeServiceAcceptMessage(raw []byte) (*ServiceAcceptMessage, error) {
	m, err := decodeServiceMessage(raw, MsgServiceAccept)
	if err != nil {
		return nil, err
	}
	return &ServiceAcceptMessage{m}, nil
}

func (m *ServiceAcceptMessage) Builder() *ServiceAcceptMessageBuilder {
	return &ServiceAcceptMessageBuilder{ServiceName: m.serviceName}
}

type ServiceAcceptMessageBuilder struct {
	ServiceName string
}

func (b *ServiceAcceptMessageBuilder) Build() (*ServiceAcceptMessage, error) {
	m, err := buildServiceMessage(MsgServiceAccept, b.ServiceName)
	if err != nil {
		return nil, err
	}
	return &ServiceAcceptMessage{m}, nil
}
