package homeassistant

import (
	"encoding/json"
	"time"

	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/signal"
)

type stateGetResponse struct {
	EntityId     string         `json:"entity_id"`
	State        signal.Switch  `json:"state"`
	Attributes   map[string]any `json:"attributes"`
	LastChanged  time.Time      `json:"last_changed"`
	LastReported time.Time      `json:"last_reported"`
	LastUpdated  time.Time      `json:"last_updated"`
	Context      map[string]any `json:"context"`
}

func (this *stateGetResponse) getSessionAttributes() (result sessionAttributes, _ error) {
	if this.Attributes == nil {
		return result, nil
	}
	plain := map[string]any{}
	for _, key := range sessionAttributeKeys {
		if v, ok := this.Attributes[key]; ok {
			plain[key] = v
		}
	}
	b, err := json.Marshal(plain)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, err
	}
	return result, nil
}

type statePostRequest struct {
	State      signal.Switch  `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (this *statePostRequest) setSessionAttributes(v sessionAttributes) {
	if this.Attributes == nil {
		this.Attributes = make(map[string]any)
	}
	this.Attributes["phase"] = v.Phase
	this.Attributes["modulated"] = v.Modulated
	if v.Error != "" {
		this.Attributes["error"] = v.Error
	} else {
		delete(this.Attributes, "error")
	}
}

var sessionAttributeKeys = []string{"phase", "modulated", "error"}

// sessionAttributes are stored next to the on/off state of the entity.
type sessionAttributes struct {
	Phase     session.Phase `json:"phase"`
	Modulated bool          `json:"modulated"`
	Error     string        `json:"error,omitempty"`
}

func sessionAttributesOf(s session.State) sessionAttributes {
	return sessionAttributes{
		Phase:     s.Phase,
		Modulated: s.IsModulated(),
		Error:     s.Error,
	}
}

type state struct {
	timestamp  time.Time
	state      signal.Switch
	attributes sessionAttributes
}

func (this *state) isEqualTo(o *state) bool {
	return this.state == o.state &&
		this.attributes == o.attributes
}
