package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/signal"
	"github.com/blaubaer/stfu/pkg/volume"
)

type fakePulser struct {
	ensured []session.State
	pulses  int
	resets  int
}

func (this *fakePulser) Dispose() error { return nil }
func (this *fakePulser) Update() error  { return nil }
func (this *fakePulser) Ensure(c signal.Context) error {
	this.ensured = append(this.ensured, c.State())
	return nil
}
func (this *fakePulser) GetType() signal.Type { return signal.TypeHue }
func (this *fakePulser) Pulse(volume.Reading) { this.pulses++ }
func (this *fakePulser) Reset()               { this.resets++ }

func TestFacade_none(t *testing.T) {
	var instance Facade
	conf := NewConfiguration()

	require.NoError(t, instance.Initialize(&conf, nil))

	assert.Equal(t, signal.TypeNone, instance.GetType())
	assert.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))
	assert.NoError(t, instance.Update())
	assert.False(t, instance.IsPulser())
	assert.NotPanics(t, func() { instance.Pulse(volume.Reading{Volume: 1}) })
	assert.NoError(t, instance.Dispose())
}

func TestFacade_delegates(t *testing.T) {
	delegate := &fakePulser{}
	instance := Facade{Signal: delegate}

	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))
	instance.Pulse(volume.Reading{})
	instance.Reset()

	assert.True(t, instance.IsPulser())
	assert.Equal(t, signal.TypeHue, instance.GetType())
	assert.Equal(t, []session.State{{Phase: session.PhaseActive}}, delegate.ensured)
	assert.Equal(t, 1, delegate.pulses)
	assert.Equal(t, 1, delegate.resets)

	require.NoError(t, instance.Dispose())
	assert.Nil(t, instance.Signal)
}

func TestFacade_Initialize_unsupported(t *testing.T) {
	var instance Facade
	conf := NewConfiguration()
	conf.Type = signal.TypeSystray

	assert.Error(t, instance.Initialize(&conf, nil))
}
