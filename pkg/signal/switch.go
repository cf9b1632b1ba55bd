package signal

import (
	"fmt"
	"strings"

	"github.com/blaubaer/stfu/pkg/session"
)

// Switch is the binary form of a session state used by signals which only
// know on and off.
type Switch uint8

const (
	SwitchOff = Switch(0)
	SwitchOn  = Switch(1)
)

// SwitchOf returns SwitchOn for every active phase.
func SwitchOf(state session.State) Switch {
	if state.IsActive() {
		return SwitchOn
	}
	return SwitchOff
}

func (this *Switch) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "off", "0", "false", "no":
		*this = SwitchOff
		return nil
	case "on", "1", "true", "yes":
		*this = SwitchOn
		return nil
	default:
		return fmt.Errorf("illegal-signal-switch: %s", plain)
	}
}

func (this Switch) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-signal-switch-%d", this)
	}
	return string(v)
}

func (this Switch) MarshalText() (text []byte, err error) {
	switch this {
	case SwitchOff:
		return []byte("off"), nil
	case SwitchOn:
		return []byte("on"), nil
	default:
		return nil, fmt.Errorf("illegal signal switch: %d", this)
	}
}

func (this *Switch) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
