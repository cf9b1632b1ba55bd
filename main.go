package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/consumer"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"
	"github.com/getlantern/systray"
	"github.com/joho/godotenv"

	"github.com/blaubaer/stfu/pkg/app"
	"github.com/blaubaer/stfu/pkg/common"
	ps "github.com/blaubaer/stfu/pkg/signal"
	tray "github.com/blaubaer/stfu/pkg/signal/systray"
	"github.com/blaubaer/stfu/pkg/ui"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = io.WriteString(os.Stderr, "cannot load .env: "+err.Error()+"\n")
		os.Exit(1)
	}

	sink := &logSink{out: os.Stderr, held: common.NewRing[string](2000)}
	consumer.Default = consumer.NewWriter(sink)

	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	a := app.NewApp()
	keyboard := ui.NewKeyboard(os.Stdin)

	cmd := kingpin.New(os.Args[0], "Plays everything you say back to you, two seconds later.").
		Action(func(*kingpin.ParseContext) error {
			interactive := keyboard.IsTerminal()
			if interactive {
				a.Output = os.Stdout
				a.Width = ui.TerminalWidth(os.Stdout)
			}
			if err := a.Initialize(); err != nil {
				return err
			}
			defer func() { _ = a.Dispose() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			inputs := make(chan ui.Input)
			run := func() {
				defer cancel()
				if interactive {
					sink.hold()
					defer sink.release()
				}
				go func() {
					if err := keyboard.Run(ctx, inputs); err != nil && !errors.Is(err, context.Canceled) {
						log.WithError(err).
							Warn("Cannot read keyboard.")
					}
				}()
				defer keyboard.Restore()
				if err := a.Run(ctx, inputs); err != nil {
					log.WithError(err).
						Error("Failed to run.")
				}
			}

			if !a.Configuration().UI.Systray {
				run()
				return nil
			}

			t := &tray.Systray{Icons: tray.NewIcons()}
			if err := t.Initialize(); err != nil {
				return err
			}
			systray.Run(func() {
				t.Attach(ctx, inputs)
				a.OtherSignals = append(a.OtherSignals, ps.Signal(t))
				_ = t.Ensure(ps.NewContext(a.Machine().State()))
				go func() {
					defer systray.Quit()
					run()
				}()
			}, nil)
			return nil
		})
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "").
		Envar("STFU_LOG_LEVEL").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		Envar("STFU_LOG_FORMAT").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("auto").
		Envar("STFU_LOG_COLOR").
		SetValue(lv.Consumer.Formatter.ColorMode)

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}

// logSink writes every log entry to out, except while the terminal screen is
// shown. Then the latest entries are held back and written afterward.
type logSink struct {
	out     io.Writer
	held    *common.Ring[string]
	holding bool
	mutex   sync.Mutex
}

func (this *logSink) Write(p []byte) (int, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.holding {
		this.held.Push(string(p))
		return len(p), nil
	}
	return this.out.Write(p)
}

func (this *logSink) hold() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.holding = true
}

func (this *logSink) release() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.holding = false
	entries := make([]string, this.held.Len())
	this.held.Latest(entries)
	this.held.Reset()
	for _, entry := range entries {
		_, _ = io.WriteString(this.out, entry)
	}
}
