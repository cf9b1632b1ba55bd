package facade

import (
	"github.com/blaubaer/stfu/pkg/common"
	"github.com/blaubaer/stfu/pkg/signal"
	"github.com/blaubaer/stfu/pkg/signal/homeassistant"
	"github.com/blaubaer/stfu/pkg/signal/hue"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:          signal.TypeDefault,
		Hue:           hue.NewConfiguration(),
		HomeAssistant: homeassistant.NewConfiguration(),
	}
}

type Configuration struct {
	Type          signal.Type                 `yaml:"type"`
	Hue           hue.Configuration           `yaml:"hue,omitempty"`
	HomeAssistant homeassistant.Configuration `yaml:"homeAssistant,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal", "Signal which mirrors the session outside of the terminal. All possible values: "+signal.AllTypes.String()).
		Envar("STFU_SIGNAL").
		SetValue(&this.Type)

	this.Hue.SetupConfiguration(using)
	this.HomeAssistant.SetupConfiguration(using)
}
