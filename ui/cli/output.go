package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// Output writes command results, colouring them only when stdout is a
// terminal.
type Output struct {
	UseColors bool
	out       io.Writer
	errOut    io.Writer
}

func NewOutput() *Output {
	return &Output{
		UseColors: term.IsTerminal(int(os.Stdout.Fd())),
		out:       os.Stdout,
		errOut:    os.Stderr,
	}
}

// Writer returns the stream plain command output goes to.
func (o *Output) Writer() io.Writer {
	return o.out
}

func (o *Output) paint(color, message string) string {
	if !o.UseColors {
		return message
	}
	return color + message + ColorReset
}

func (o *Output) Success(message string) {
	fmt.Fprintln(o.out, o.paint(ColorGreen, message))
}

// Notice prints an outcome that is not a failure, such as a fast-forward.
func (o *Output) Notice(message string) {
	fmt.Fprintln(o.out, o.paint(ColorYellow, message))
}

func (o *Output) Info(message string) {
	fmt.Fprintln(o.out, message)
}

func (o *Output) Error(message string) {
	fmt.Fprintln(o.errOut, o.paint(ColorRed, message))
}

// Highlight wraps s in the cyan used for ids and branch names.
func (o *Output) Highlight(s string) string {
	return o.paint(ColorCyan, s)
}
