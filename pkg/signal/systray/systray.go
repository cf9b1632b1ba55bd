package systray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/signal"
	"github.com/blaubaer/stfu/pkg/ui"
)

// Systray shows the session in the system tray and offers a menu to control
// it.
type Systray struct {
	Icons Icons

	mutex  sync.Mutex
	toggle *systray.MenuItem
	crazy  *systray.MenuItem
	quit   *systray.MenuItem
}

func (this *Systray) Initialize() error {
	for _, p := range session.AllPhases {
		if len(this.Icons[p]) == 0 {
			return fmt.Errorf("icon for phase %v is empty", p)
		}
	}
	return nil
}

// Attach creates the menu and forwards every click to inputs until ctx is
// done. It has to be called inside of systray.Run.
func (this *Systray) Attach(ctx context.Context, inputs chan<- ui.Input) {
	this.mutex.Lock()
	systray.SetTitle("STFU")
	systray.SetIcon(this.Icons[session.PhaseIdle])
	toggle := systray.AddMenuItem("Start", "Start silencing")
	crazy := systray.AddMenuItemCheckbox("Crazy", "Modulate the played back voice", false)
	crazy.Disable()
	systray.AddSeparator()
	quit := systray.AddMenuItem("Exit", "Exit STFU")
	this.toggle, this.crazy, this.quit = toggle, crazy, quit
	this.mutex.Unlock()

	go func() {
		for {
			var input ui.Input
			select {
			case <-ctx.Done():
				return
			case <-toggle.ClickedCh:
				input = ui.InputToggle
			case <-crazy.ClickedCh:
				input = ui.InputCrazy
			case <-quit.ClickedCh:
				input = ui.InputQuit
			}
			select {
			case inputs <- input:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (this *Systray) Dispose() error {
	return nil
}

func (this *Systray) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	state := ctx.State()
	systray.SetIcon(this.Icons[state.Phase])
	systray.SetTooltip(Tooltip(state))

	if v := this.toggle; v != nil {
		if state.IsActive() {
			v.SetTitle("Stop")
			v.SetTooltip("Stop silencing")
		} else {
			v.SetTitle("Start")
			v.SetTooltip("Start silencing")
		}
	}
	if v := this.crazy; v != nil {
		if state.IsActive() {
			v.Enable()
		} else {
			v.Disable()
		}
		if state.IsModulated() {
			v.Check()
		} else {
			v.Uncheck()
		}
	}
	return nil
}

// Tooltip returns the text shown while hovering over the icon.
func Tooltip(state session.State) string {
	switch {
	case state.HasError():
		return "STFU: " + state.Error
	case state.IsModulated():
		return "STFU: demon mode"
	case state.IsActive():
		return "STFU: silencing"
	default:
		return "STFU: idle"
	}
}

func (this *Systray) Update() error {
	return nil
}

func (this *Systray) GetType() signal.Type {
	return signal.TypeSystray
}
