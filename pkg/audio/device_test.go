package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var givenDevices = Devices{
	{Name: "Built-in Microphone", Index: 0, MaxInputChannels: 1, DefaultInput: true},
	{Name: "Built-in Output", Index: 1, MaxOutputChannels: 2, DefaultOutput: true},
	{Name: "USB Headset", Index: 2, MaxInputChannels: 1, MaxOutputChannels: 2},
}

func TestDevices_Inputs(t *testing.T) {
	actual := givenDevices.Inputs()

	assert.Equal(t, "[0] Built-in Microphone, [2] USB Headset", actual.String())
}

func TestDevices_Outputs(t *testing.T) {
	actual := givenDevices.Outputs()

	assert.Equal(t, []string{"[1] Built-in Output", "[2] USB Headset"}, actual.Strings())
}

func TestDevices_Select(t *testing.T) {
	isDefaultInput := func(d Device) bool { return d.DefaultInput }

	actual, ok := givenDevices.Select(func(d Device) bool { return d.Name == "USB Headset" }, isDefaultInput)
	assert.True(t, ok)
	assert.Equal(t, 2, actual.Index)

	actual, ok = givenDevices.Select(func(Device) bool { return false }, isDefaultInput)
	assert.True(t, ok)
	assert.Equal(t, 0, actual.Index)

	_, ok = Devices{}.Select(func(Device) bool { return true }, isDefaultInput)
	assert.False(t, ok)
}

func TestConfiguration_InputPredicate(t *testing.T) {
	var instance Configuration
	predicate := instance.InputPredicate()
	assert.False(t, predicate(givenDevices[0]))

	assert.NoError(t, instance.InputDevice.Set("(?i)usb"))
	predicate = instance.InputPredicate()
	assert.True(t, predicate(givenDevices[2]))
	assert.False(t, predicate(givenDevices[0]))

	assert.NoError(t, instance.OutputDevice.Set("(?i)usb"))
	assert.True(t, instance.OutputPredicate()(givenDevices[2]))
	assert.False(t, instance.OutputPredicate()(givenDevices[1]))
}
