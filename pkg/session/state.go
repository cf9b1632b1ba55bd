package session

// State is the one record describing a session.
type State struct {
	Phase Phase `json:"phase" yaml:"phase"`
	// Error is the user facing message of the last failed start. It is empty
	// if the last start succeeded.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (this State) IsActive() bool {
	return this.Phase.IsActive()
}

func (this State) IsModulated() bool {
	return this.Phase == PhaseActiveModulated
}

func (this State) HasError() bool {
	return this.Error != ""
}

func (this State) String() string {
	if this.Error != "" {
		return this.Phase.String() + " (" + this.Error + ")"
	}
	return this.Phase.String()
}
