package hue

import (
	"time"

	"github.com/blaubaer/stfu/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Name: common.MustNewRegexp("^STFU"),

		Brightness:    254,
		MinBrightness: 40,
		Hue:           0,
		ModulatedHue:  50000,
		Saturation:    254,

		MinUpdateInterval: 200 * time.Millisecond,
	}
}

type Configuration struct {
	Pair   bool   `yaml:"pair,omitempty"`
	Bridge string `yaml:"bridge,omitempty"`
	User   string `yaml:"user,omitempty"`

	Name  common.Regexp `yaml:"target"`
	Kinds Kinds         `yaml:"kinds,omitempty"`

	Brightness    uint8  `yaml:"brightness"`
	MinBrightness uint8  `yaml:"minBrightness"`
	Hue           uint16 `yaml:"hue"`
	ModulatedHue  uint16 `yaml:"modulatedHue"`
	Saturation    uint8  `yaml:"saturation"`

	// MinUpdateInterval limits how often the brightness follows the volume.
	// A bridge does not accept much more than 10 commands per second.
	MinUpdateInterval time.Duration `yaml:"minUpdateInterval"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.hue.pair", "If true this application will pair again with an existing hue. This will be implicit enabled if this application is not already paired.").
		Envar("STFU_SIGNAL_HUE_PAIR").
		BoolVar(&this.Pair)
	using.Flag("signal.hue.bridge", "Usually the bridge is automatically detected. You can specify an explicit one if they are more than one. This is only required while pairing and will afterwards be ignored.").
		Envar("STFU_SIGNAL_HUE_BRIDGE").
		StringVar(&this.Bridge)
	using.Flag("signal.hue.user", "Usually this is set while pairing and will then be persisted. If this set this will be used and not be persisted.").
		Envar("STFU_SIGNAL_HUE_USER").
		StringVar(&this.User)
	using.Flag("signal.hue.name", "Name as regex of the lights/groups which should glow while a session is active.").
		Envar("STFU_SIGNAL_HUE_NAME").
		SetValue(&this.Name)
	using.Flag("signal.hue.kind", "Kind(s) of what should be handled. Possible values: "+AllKinds.String()).
		Envar("STFU_SIGNAL_HUE_KIND").
		SetValue(&this.Kinds)

	using.Flag("signal.hue.brightness", "Brightness (1..254) of the lights at full volume.").
		Envar("STFU_SIGNAL_HUE_BRIGHTNESS").
		Uint8Var(&this.Brightness)
	using.Flag("signal.hue.minBrightness", "Brightness (1..254) of the lights at silence.").
		Envar("STFU_SIGNAL_HUE_MIN_BRIGHTNESS").
		Uint8Var(&this.MinBrightness)
	using.Flag("signal.hue.hue", "Hue (0..65535) of the lights while active. Both 0 and 65535 are red, 25500 is green and 46920 is blue.").
		Envar("STFU_SIGNAL_HUE_HUE").
		Uint16Var(&this.Hue)
	using.Flag("signal.hue.modulatedHue", "Hue (0..65535) of the lights while the crazy mode is active.").
		Envar("STFU_SIGNAL_HUE_MODULATED_HUE").
		Uint16Var(&this.ModulatedHue)
	using.Flag("signal.hue.saturation", "Saturation of the light. 254 is the most saturated (colored) and 0 is the least saturated (white).").
		Envar("STFU_SIGNAL_HUE_SATURATION").
		Uint8Var(&this.Saturation)
	using.Flag("signal.hue.minUpdateInterval", "Minimal duration between two brightness updates which follow the volume.").
		Envar("STFU_SIGNAL_HUE_MIN_UPDATE_INTERVAL").
		DurationVar(&this.MinUpdateInterval)
}

// brightnessOf maps a volume (0..1) linear between MinBrightness and
// Brightness.
func (this Configuration) brightnessOf(volume float64) uint8 {
	lo, hi := float64(this.MinBrightness), float64(this.Brightness)
	if hi < lo {
		lo, hi = hi, lo
	}
	switch {
	case volume <= 0:
		return uint8(lo)
	case volume >= 1:
		return uint8(hi)
	default:
		return uint8(lo + (hi-lo)*volume)
	}
}
