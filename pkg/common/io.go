package common

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
)

type settable interface {
	IsZero() bool
	Set(string) error
}

// PromptOutput receives the prompts. It is stderr because stdout belongs to
// the terminal presentation.
var PromptOutput io.Writer = os.Stderr

// PromptIfRequired asks the user on the terminal for a value of of until it
// is not zero anymore. Nothing is asked if of is already set.
func PromptIfRequired(of settable, promptName string, canBeEmpty, isPassword bool) error {
	if !of.IsZero() {
		return nil
	}

	l, err := readline.NewEx(&readline.Config{
		Stdin:  os.Stdin,
		Stdout: PromptOutput,
	})
	if err != nil {
		return fmt.Errorf("could not read from terminal for prompt %q: %w", promptName, err)
	}
	defer func() {
		_ = l.Close()
	}()

	prompt := fmt.Sprintf("Enter %s: ", promptName)
	l.SetPrompt(prompt)
	if isPassword {
		l.SetMaskRune('*')
	}
	l.ResetHistory()
	for of.IsZero() {
		var line string
		if isPassword {
			var b []byte
			b, err = l.ReadPassword(prompt)
			line = string(b)
		} else {
			line, err = l.Readline()
		}
		if err != nil {
			return fmt.Errorf("could not read from terminal for prompt %q: %w", promptName, err)
		}
		if err := of.Set(line); err != nil {
			log.WithError(err).
				With("prompt", promptName).
				Error("Illegal value.")
		}
		if canBeEmpty && of.IsZero() {
			return nil
		}
	}
	return nil
}

func PromptStringIfRequired(of *string, promptName string, canBeEmpty, isPassword bool) error {
	buf := promptString(*of)
	if err := PromptIfRequired(&buf, promptName, canBeEmpty, isPassword); err != nil {
		return err
	}
	*of = string(buf)
	return nil
}

type promptString string

func (v promptString) IsZero() bool {
	return len(v) == 0
}

func (v *promptString) Set(s string) error {
	*v = promptString(s)
	return nil
}
