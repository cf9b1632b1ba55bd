package ui

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"
)

var (
	tEraseLine = []byte{27, '[', '2', 'K'}
	tReset     = []byte{27, '[', '0', 'm'}
	tHideCur   = []byte{27, '[', '?', '2', '5', 'l'}
	tShowCur   = []byte{27, '[', '?', '2', '5', 'h'}
)

// Screen is a fixed block of lines at the bottom of a terminal which is
// redrawn in place. out has to accept ANSI escape sequences.
type Screen struct {
	out   io.Writer
	width int

	mutex sync.Mutex
	lines []string
	drawn bool
	buf   bytes.Buffer
}

func NewScreen(out io.Writer, lines, width int) *Screen {
	if width <= 0 {
		width = 80
	}
	return &Screen{
		out:   out,
		width: width,
		lines: make([]string, lines),
	}
}

func (this *Screen) Width() int {
	return this.width
}

// Set replaces the content of the given line and redraws the screen.
func (this *Screen) Set(line int, text string) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if line < 0 || line >= len(this.lines) {
		return nil
	}
	if this.drawn && this.lines[line] == text {
		return nil
	}
	this.lines[line] = text
	return this.draw()
}

func (this *Screen) Line(line int) string {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if line < 0 || line >= len(this.lines) {
		return ""
	}
	return this.lines[line]
}

func (this *Screen) draw() error {
	this.buf.Reset()
	if this.drawn {
		this.buf.WriteString("\x1b[")
		this.buf.WriteString(strconv.Itoa(len(this.lines)))
		this.buf.WriteByte('A')
	} else {
		this.buf.Write(tHideCur)
	}
	for _, l := range this.lines {
		this.buf.WriteByte('\r')
		this.buf.Write(tEraseLine)
		this.buf.WriteString(l)
		this.buf.Write(tReset)
		// The terminal might be in raw mode.
		this.buf.WriteString("\r\n")
	}
	this.drawn = true
	_, err := this.out.Write(this.buf.Bytes())
	return err
}

// Close shows the cursor again. The content stays visible.
func (this *Screen) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.drawn {
		return nil
	}
	_, err := this.out.Write(tShowCur)
	return err
}

// center pads text with spaces so that it is centered in width. visible is
// the printed length of text without escape sequences.
func center(text string, visible, width int) string {
	if text == "" || visible >= width {
		return text
	}
	return strings.Repeat(" ", (width-visible)/2) + text
}
