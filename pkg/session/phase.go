package session

import (
	"fmt"
	"strings"
)

type Phase uint8

const (
	PhaseIdle            = Phase(0)
	PhaseActive          = Phase(1)
	PhaseActiveModulated = Phase(2)
)

var (
	AllPhases = Phases{
		PhaseIdle,
		PhaseActive,
		PhaseActiveModulated,
	}
)

func (this *Phase) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "idle", "off", "stopped":
		*this = PhaseIdle
		return nil
	case "active", "on", "running":
		*this = PhaseActive
		return nil
	case "modulated", "crazy":
		*this = PhaseActiveModulated
		return nil
	default:
		return fmt.Errorf("illegal-session-phase: %s", plain)
	}
}

func (this Phase) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-session-phase-%d", this)
	}
	return string(v)
}

func (this Phase) MarshalText() (text []byte, err error) {
	switch this {
	case PhaseIdle:
		return []byte("idle"), nil
	case PhaseActive:
		return []byte("active"), nil
	case PhaseActiveModulated:
		return []byte("modulated"), nil
	default:
		return nil, fmt.Errorf("illegal session phase: %d", this)
	}
}

func (this *Phase) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

func (this Phase) IsActive() bool {
	return this == PhaseActive || this == PhaseActiveModulated
}

type Phases []Phase

func (this Phases) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Phases) String() string {
	return strings.Join(this.Strings(), ",")
}
