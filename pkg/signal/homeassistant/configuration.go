package homeassistant

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blaubaer/stfu/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		EntityId:         fmt.Sprintf("input_boolean.%s_stfu", computerId),
		DeadZoneInterval: time.Second * 60,
		Timeout:          time.Second * 10,
	}
}

var forbiddenEntityIdChars = regexp.MustCompile("[^a-z0-9_]")

func normalizeEntityIdPart(id string) string {
	id = strings.ToLower(id)
	id = strings.TrimSpace(id)
	id = strings.ReplaceAll(id, "-", "_")
	id = strings.ReplaceAll(id, ".", "_")
	id = forbiddenEntityIdChars.ReplaceAllString(id, "_")
	return id
}

var computerId = func() string {
	if result, err := os.Hostname(); err == nil && result != "" {
		return normalizeEntityIdPart(result)
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("cannot generate entity id: %v", err))
	}

	return hex.EncodeToString(buf)
}()

type Configuration struct {
	Server   string `yaml:"server,omitempty"`
	Token    string `yaml:"token,omitempty"`
	EntityId string `yaml:"entityId"`

	// DeadZoneInterval is how long the last published state is trusted
	// before the remote state is read again.
	DeadZoneInterval time.Duration `yaml:"deadZoneInterval,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.homeassistant.server", "URL of the Home Assistant instance.").
		Envar("STFU_SIGNAL_HOMEASSISTANT_SERVER").
		StringVar(&this.Server)
	using.Flag("signal.homeassistant.token", "Long life token to access the Home Assistant instance.").
		Envar("STFU_SIGNAL_HOMEASSISTANT_TOKEN").
		StringVar(&this.Token)
	using.Flag("signal.homeassistant.entityId", "Entity ID (input_boolean) the session state is mirrored to.").
		Envar("STFU_SIGNAL_HOMEASSISTANT_ENTITY_ID").
		StringVar(&this.EntityId)
	using.Flag("signal.homeassistant.deadZoneInterval", "Duration for how long the last published state is used to compare to, instead of asking the remote system which is the source of truth.").
		Envar("STFU_SIGNAL_HOMEASSISTANT_DEAD_ZONE_INTERVAL").
		DurationVar(&this.DeadZoneInterval)
	using.Flag("signal.homeassistant.timeout", "Timeout of every request to Home Assistant.").
		Envar("STFU_SIGNAL_HOMEASSISTANT_TIMEOUT").
		DurationVar(&this.Timeout)
}

func (this Configuration) timeout() time.Duration {
	if this.Timeout > 0 {
		return this.Timeout
	}
	return time.Second * 10
}
