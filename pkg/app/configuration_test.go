package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/stfu/pkg/common"
	"github.com/blaubaer/stfu/pkg/signal"
)

func Test_Configuration_saveTo_and_loadFrom(t *testing.T) {
	given := NewConfiguration()
	given.Audio.InputDevice = common.MustNewRegexp("^USB")
	given.Graph.Delay = 1500 * time.Millisecond
	given.UI.ReducedMotion = true
	given.Signal.Type = signal.TypeHue

	buf := new(bytes.Buffer)
	require.NoError(t, given.saveTo(buf))
	assert.Contains(t, buf.String(), "delay: 1.5s")

	actual := NewConfiguration()
	require.NoError(t, actual.loadFrom(buf))

	assert.Equal(t, "^USB", actual.Audio.InputDevice.String())
	assert.Equal(t, 1500*time.Millisecond, actual.Graph.Delay)
	assert.Equal(t, 0.8, actual.Graph.Gain)
	assert.True(t, actual.UI.ReducedMotion)
	assert.Equal(t, signal.TypeHue, actual.Signal.Type)
}

func Test_Configuration_loadFrom_keepsDefaults(t *testing.T) {
	actual := NewConfiguration()
	require.NoError(t, actual.loadFrom(strings.NewReader("ui:\n  frameRate: 30\n")))

	assert.Equal(t, 30, actual.UI.FrameRate)
	assert.Equal(t, 2*time.Second, actual.Graph.Delay)
	assert.Equal(t, 256, actual.Graph.FFTSize)
}

func Test_Configuration_loadFrom_empty(t *testing.T) {
	actual := NewConfiguration()
	require.NoError(t, actual.loadFrom(strings.NewReader("")))

	assert.Equal(t, NewConfiguration().Graph, actual.Graph)
}

func Test_Configuration_loadFrom_unknownField(t *testing.T) {
	actual := NewConfiguration()
	err := actual.loadFrom(strings.NewReader("checkInterval: 5s\n"))

	assert.Error(t, err)
}

func Test_Configuration_loadFromFile_missing(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "absent.yml")

	actual := NewConfiguration()
	assert.NoError(t, actual.loadFromFile(fn, true))
	assert.Error(t, actual.loadFromFile(fn, false))
}

func Test_Configuration_saveToFile_createsDirectory(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "stfu", "configuration.yml")

	given := NewConfiguration()
	given.UI.FrameRate = 24
	require.NoError(t, given.saveToFile(fn))

	actual := NewConfiguration()
	require.NoError(t, actual.loadFromFile(fn, false))
	assert.Equal(t, 24, actual.UI.FrameRate)
}

func Test_Configuration_mergeFrom(t *testing.T) {
	instance := NewConfiguration()
	instance.Audio.InputDevice = common.MustNewRegexp("^USB")
	instance.Audio.OutputDevice = common.MustNewRegexp("^Speaker")

	var fromFlags Configuration
	fromFlags.Audio.InputDevice = common.MustNewRegexp("^Headset")
	fromFlags.Graph.Delay = 3 * time.Second
	fromFlags.UI.Systray = true

	require.NoError(t, instance.mergeFrom(fromFlags))

	assert.Equal(t, "^Headset", instance.Audio.InputDevice.String())
	assert.Equal(t, "^Speaker", instance.Audio.OutputDevice.String())
	assert.Equal(t, 3*time.Second, instance.Graph.Delay)
	assert.Equal(t, 5*time.Second, instance.Graph.MaxDelay)
	assert.Equal(t, 0.8, instance.Graph.Gain)
	assert.True(t, instance.UI.Systray)
	assert.Equal(t, 60, instance.UI.FrameRate)
}

func Test_defaultConfigurationFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APPDATA", dir)

	assert.Equal(t, filepath.Join(dir, "stfu", "configuration.yml"), defaultConfigurationFile())

	t.Setenv("APPDATA", "")
	assert.Equal(t, "configuration.yml", filepath.Base(defaultConfigurationFile()))
}
