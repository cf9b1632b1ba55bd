package audio

import (
	"fmt"
	"strings"
)

type Device struct {
	Name              string  `json:"name"`
	Index             int     `json:"index"`
	HostApi           string  `json:"hostApi,omitempty"`
	MaxInputChannels  int     `json:"maxInputChannels"`
	MaxOutputChannels int     `json:"maxOutputChannels"`
	DefaultSampleRate float64 `json:"defaultSampleRate"`
	DefaultInput      bool    `json:"defaultInput,omitempty"`
	DefaultOutput     bool    `json:"defaultOutput,omitempty"`
}

func (this Device) String() string {
	return fmt.Sprintf("[%d] %s", this.Index, this.Name)
}

func (this Device) IsInput() bool {
	return this.MaxInputChannels > 0
}

func (this Device) IsOutput() bool {
	return this.MaxOutputChannels > 0
}

type Devices []Device

func (this Devices) IsZero() bool {
	return len(this) <= 0
}

func (this Devices) HasContent() bool {
	return !this.IsZero()
}

func (this Devices) Inputs() (result Devices) {
	for _, v := range this {
		if v.IsInput() {
			result = append(result, v)
		}
	}
	return
}

func (this Devices) Outputs() (result Devices) {
	for _, v := range this {
		if v.IsOutput() {
			result = append(result, v)
		}
	}
	return
}

// Select returns the first device matching the given predicate. If the
// predicate matches nothing the device flagged by isDefault is used.
func (this Devices) Select(predicate func(Device) bool, isDefault func(Device) bool) (Device, bool) {
	for _, v := range this {
		if predicate(v) {
			return v, true
		}
	}
	for _, v := range this {
		if isDefault(v) {
			return v, true
		}
	}
	return Device{}, false
}

func (this Devices) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Devices) String() string {
	return strings.Join(this.Strings(), ", ")
}
