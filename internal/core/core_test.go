package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructZeroValues(t *testing.T) {
	var eth EthernetHeader
	assert.Zero(t, eth.EtherType)
	assert.Nil(t, eth.VLANs)

	var ip IPHeader
	assert.False(t, ip.SrcIP.IsValid())
	assert.Empty(t, ip.Options)

	var th TransportHeader
	assert.Zero(t, th.ICMPType)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	errs := []error{ErrFrameTooShort, ErrUnsupportedProto, ErrConfigInvalid, ErrUnknownFamily}
	for i, a := range errs {
		for j, b := range errs {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestParseFamily(t *testing.T) {
	for _, f := range Families {
		got, err := ParseFamily(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFamily("tcpopt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFamily))
	assert.Contains(t, err.Error(), `"tcpopt"`)
}
