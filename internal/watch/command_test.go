package watch

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandGetRole(t *testing.T) {
	cmd, err := ParseCommand("get_role", nil)
	require.NoError(t, err)
	assert.Equal(t, GetRole{}, cmd)
}

func TestParseCommandTransferHost(t *testing.T) {
	id := uuid.New()
	cmd, err := ParseCommand("transfer_host", json.RawMessage(`{"userId":"`+id.String()+`"}`))
	require.NoError(t, err)
	assert.Equal(t, TransferHost{UserID: id}, cmd)
}

func TestParseCommandKick(t *testing.T) {
	id := uuid.New()
	cmd, err := ParseCommand("kick", json.RawMessage(`{"userId":"`+id.String()+`"}`))
	require.NoError(t, err)
	assert.Equal(t, Kick{UserID: id}, cmd)
}

func TestParseCommandSetPassword(t *testing.T) {
	cmd, err := ParseCommand("set_password", json.RawMessage(`{"password":"pw1"}`))
	require.NoError(t, err)
	assert.Equal(t, SetPassword{Password: "pw1"}, cmd)

	// Пустой payload — сброс пароля
	cmd, err = ParseCommand("set_password", nil)
	require.NoError(t, err)
	assert.Equal(t, SetPassword{Password: ""}, cmd)
}

func TestParseCommandGenericPassthrough(t *testing.T) {
	raw := json.RawMessage(`{"position":1234,"rate":1.5}`)
	cmd, err := ParseCommand("seek", raw)
	require.NoError(t, err)
	require.IsType(t, Generic{}, cmd)

	g := cmd.(Generic)
	assert.Equal(t, "seek", g.Name)
	assert.Equal(t, raw, g.Data, "relay payload is opaque and untouched")
}

func TestParseCommandInvalid(t *testing.T) {
	cases := []struct {
		name string
		data json.RawMessage
	}{
		{"", nil},
		{"transfer_host", nil},
		{"transfer_host", json.RawMessage(`{"userId":"not-a-uuid"}`)},
		{"transfer_host", json.RawMessage(`{}`)},
		{"kick", json.RawMessage(`{"userId":null}`)},
		{"set_password", json.RawMessage(`not json`)},
	}

	for _, tc := range cases {
		_, err := ParseCommand(tc.name, tc.data)
		assert.ErrorIs(t, err, ErrInvalidMessage, "command %q payload %s", tc.name, tc.data)
	}
}
