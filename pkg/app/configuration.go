package app

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/blaubaer/stfu/pkg/audio"
	"github.com/blaubaer/stfu/pkg/common"
	"github.com/blaubaer/stfu/pkg/graph"
	"github.com/blaubaer/stfu/pkg/signal/facade"
	"github.com/blaubaer/stfu/pkg/volume"
)

func NewConfiguration() Configuration {
	return Configuration{
		Audio:           audio.NewConfiguration(),
		Graph:           graph.NewParameters(),
		UI:              NewUIConfiguration(),
		Signal:          facade.NewConfiguration(),
		RefreshInterval: 5 * time.Minute,
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	Audio  audio.Configuration  `yaml:"audio"`
	Graph  graph.Parameters     `yaml:"graph"`
	UI     UIConfiguration      `yaml:"ui"`
	Signal facade.Configuration `yaml:"signal,omitempty"`

	// RefreshInterval is how often the signals are refreshed and ensured
	// again, even if the session did not change.
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("STFU_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("refreshInterval", "How often the signals should be refreshed.").
		Envar("STFU_REFRESH_INTERVAL").
		DurationVar(&this.RefreshInterval)

	this.Audio.SetupConfiguration(using)
	this.Graph.SetupConfiguration(using)
	this.UI.SetupConfiguration(using)
	this.Signal.SetupConfiguration(using)
}

func NewUIConfiguration() UIConfiguration {
	return UIConfiguration{
		FrameRate: volume.DefaultFrameRate,
	}
}

type UIConfiguration struct {
	// FrameRate is how often per second the volume is sampled.
	FrameRate     int  `yaml:"frameRate"`
	ReducedMotion bool `yaml:"reducedMotion,omitempty"`
	// Systray shows an icon with a menu in the system tray.
	Systray bool `yaml:"systray,omitempty"`
}

func (this *UIConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("ui.frameRate", "How often per second the volume is presented.").
		Envar("STFU_UI_FRAME_RATE").
		IntVar(&this.FrameRate)
	using.Flag("ui.reducedMotion", "If set, the title does not pulse with the volume.").
		Envar("STFU_UI_REDUCED_MOTION").
		BoolVar(&this.ReducedMotion)
	using.Flag("ui.systray", "If set, an icon with a menu is shown in the system tray.").
		Envar("STFU_UI_SYSTRAY").
		BoolVar(&this.Systray)
}

// mergeFrom overrides every value of this with the non-zero values of
// other.
func (this *Configuration) mergeFrom(other Configuration) error {
	return mergo.Merge(this, other, mergo.WithOverride, mergo.WithTransformers(regexpTransformer{}))
}

// regexpTransformer merges common.Regexp as a value; mergo cannot look into
// its unexported fields.
type regexpTransformer struct{}

var regexpType = reflect.TypeOf(common.Regexp{})

func (regexpTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != regexpType {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && src.Interface().(common.Regexp).HasContent() {
			dst.Set(src)
		}
		return nil
	}
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(this); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(this); err != nil {
		return err
	}
	return enc.Close()
}

func (this *Configuration) saveToFile(fn string) error {
	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}

func defaultConfigurationFile() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		fs, err := os.Stat(appData)
		if err == nil && fs.IsDir() {
			return filepath.Join(appData, "stfu", "configuration.yml")
		}
	}

	u, err := user.Current()
	if err != nil {
		return "configuration.yml"
	}

	return filepath.Join(u.HomeDir, ".config", "stfu", "configuration.yml")
}
