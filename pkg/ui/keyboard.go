package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	log "github.com/echocat/slf4g"
	"golang.org/x/term"
)

const (
	keyCtrlC  = 3
	keyEnter  = 13
	keyLF     = 10
	keyEscape = 27
)

// Decode maps one read of a raw terminal to an Input. Escape sequences (like
// arrow keys) are ignored; a single escape quits.
func Decode(p []byte) Input {
	if len(p) == 0 {
		return InputNone
	}
	switch p[0] {
	case keyEscape:
		if len(p) == 1 {
			return InputQuit
		}
		return InputNone
	case keyCtrlC, 'q', 'Q':
		return InputQuit
	case keyEnter, keyLF, ' ':
		return InputToggle
	case 'c', 'C':
		return InputCrazy
	default:
		return InputNone
	}
}

// Keyboard reads keys from a terminal and emits them as Input.
type Keyboard struct {
	in *os.File

	mutex    sync.Mutex
	oldState *term.State
}

func NewKeyboard(in *os.File) *Keyboard {
	return &Keyboard{in: in}
}

// IsTerminal reports if the input of this keyboard is an interactive
// terminal.
func (this *Keyboard) IsTerminal() bool {
	return term.IsTerminal(int(this.in.Fd()))
}

// TerminalWidth returns the width of the terminal of or 0 if unknown.
func TerminalWidth(of *os.File) int {
	w, _, err := term.GetSize(int(of.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// Run switches the terminal into raw mode and emits every recognized key
// to inputs until ctx is done or the input is closed. The terminal is
// restored before Run returns.
func (this *Keyboard) Run(ctx context.Context, inputs chan<- Input) error {
	if this.IsTerminal() {
		fd := int(this.in.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		this.mutex.Lock()
		this.oldState = oldState
		this.mutex.Unlock()
		defer this.Restore()
	}

	return Read(ctx, this.in, inputs)
}

// Restore brings the terminal back into the mode it was before Run.
func (this *Keyboard) Restore() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.oldState != nil {
		if err := term.Restore(int(this.in.Fd()), this.oldState); err != nil {
			log.WithError(err).
				Warn("Cannot restore terminal.")
		}
		this.oldState = nil
	}
}

// Read decodes everything of in and emits it to inputs until ctx is done or
// in reaches its end. A pending read on in cannot be interrupted; it ends
// with the next key press or when in is closed.
func Read(ctx context.Context, in io.Reader, inputs chan<- Input) error {
	reads := make(chan Input)
	failed := make(chan error, 1)
	go func() {
		buf := make([]byte, 16)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				if v := Decode(buf[:n]); v != InputNone {
					select {
					case reads <- v:
					case <-ctx.Done():
						return
					}
				}
			}
			if err != nil {
				failed <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-failed:
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		case v := <-reads:
			select {
			case inputs <- v:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
