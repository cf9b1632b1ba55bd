package signal

import (
	"github.com/blaubaer/stfu/pkg/session"
)

type Context interface {
	State() session.State
}

func NewContext(state session.State) Context {
	return staticContext{state}
}

type staticContext struct {
	state session.State
}

func (this staticContext) State() session.State {
	return this.state
}
