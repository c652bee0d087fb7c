package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONListScanDefaultsToEmpty(t *testing.T) {
	for _, in := range []interface{}{nil, []byte(""), "null", []byte("null")} {
		var l JSONList[string]
		require.NoError(t, l.Scan(in))
		assert.NotNil(t, l)
		assert.Len(t, l, 0)
	}
}

func TestJSONListScanContacts(t *testing.T) {
	var l JSONList[Contact]
	require.NoError(t, l.Scan(`[{"type":"phone","value":"11999990000","responsible":"Ana"}]`))

	require.Len(t, l, 1)
	assert.Equal(t, ContactPhone, l[0].Type)
	assert.Equal(t, "Ana", l[0].Responsible)
}

func TestJSONListValueNil(t *testing.T) {
	var l JSONList[string]
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	assert.Equal(t, []string{}, l.Slice())
}

func TestJSONListScanRejectsUnknownType(t *testing.T) {
	var l JSONList[string]
	assert.Error(t, l.Scan(42))
}

func TestUserPlaceholderEmail(t *testing.T) {
	u := User{Email: PlaceholderEmail("abc")}
	assert.Equal(t, "abc@placeholder.local", u.Email)
	assert.True(t, u.HasPlaceholderEmail())

	u.Email = "not-an-email"
	assert.True(t, u.HasPlaceholderEmail())

	u.Email = "ana@example.com"
	assert.False(t, u.HasPlaceholderEmail())
}
