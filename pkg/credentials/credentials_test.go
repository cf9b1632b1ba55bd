package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_IsZero(t *testing.T) {
	assert.True(t, (&Credentials{}).IsZero())
	assert.False(t, (&Credentials{HueUser: "foo"}).IsZero())
	assert.True(t, (&Credentials{HueUser: "foo"}).IsHomeAssistantZero())
	assert.False(t, (&Credentials{HomeAssistantToken: "bar"}).IsHomeAssistantZero())
}

func TestCredentials_UnmarshalBinary(t *testing.T) {
	var actual Credentials

	require.NoError(t, actual.UnmarshalBinary([]byte(`{"hue_bridge":"1.2.3.4","homeAssistant_token":"abc"}`)))

	assert.Equal(t, Credentials{HueBridge: "1.2.3.4", HomeAssistantToken: "abc"}, actual)
	assert.Error(t, actual.UnmarshalBinary([]byte(`{`)))
}
