// Package console prints the operator-facing view of the translation loop.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Colors used on the operator console.
var (
	ColorRed    = lipgloss.Color("#FF0000")
	ColorGreen  = lipgloss.Color("#00FF00")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorGray   = lipgloss.Color("#666666")
)

// Console writes exchanges and notices. It is safe for concurrent use; the
// record writer reports failures from its own goroutine.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	original   lipgloss.Style
	translated lipgloss.Style
	status     lipgloss.Style
	warning    lipgloss.Style
	failure    lipgloss.Style
}

// New creates a console writing to out. Colors are dropped automatically when
// out is not a terminal.
func New(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:        out,
		original:   r.NewStyle().Foreground(ColorCyan).Bold(true),
		translated: r.NewStyle().Foreground(ColorGreen).Bold(true),
		status:     r.NewStyle().Foreground(ColorGray),
		warning:    r.NewStyle().Foreground(ColorYellow),
		failure:    r.NewStyle().Foreground(ColorRed).Bold(true),
	}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// Banner announces the language pair at startup.
func (c *Console) Banner(source, target string) {
	c.println(fmt.Sprintf("Source Language: %s", source))
	c.println(fmt.Sprintf("Translation Language: %s", target))
	c.println(c.status.Render("Press Ctrl+C to exit."))
}

// Listening marks the start of a capture.
func (c *Console) Listening() {
	c.println(c.status.Render("Listening..."))
}

// Exchange shows a recognized phrase and its translation.
func (c *Console) Exchange(source, original, target, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", c.original.Render(fmt.Sprintf("Original (in %s):", source)), original)
	fmt.Fprintf(c.out, "%s %s\n", c.translated.Render(fmt.Sprintf("Translated (to %s):", target)), translated)
}

// NotUnderstood reports audio the speech engine could not decode.
func (c *Console) NotUnderstood() {
	c.println(c.warning.Render("Could not understand the audio."))
}

// SpeechUnavailable reports a failing or unreachable speech engine.
func (c *Console) SpeechUnavailable(detail string) {
	c.println(c.warning.Render(fmt.Sprintf("Could not request results from the speech service; %s", detail)))
}

// Failure reports any other abandoned cycle.
func (c *Console) Failure(detail string) {
	c.println(c.failure.Render(fmt.Sprintf("Something went wrong: %s", detail)))
}

// HistoryFailure reports a record that could not be appended to the log.
func (c *Console) HistoryFailure(detail string) {
	c.println(c.failure.Render(fmt.Sprintf("Could not write the conversation log: %s", detail)))
}

// Info prints a plain status line.
func (c *Console) Info(msg string) {
	c.println(c.status.Render(msg))
}

// Exiting is the final line of a run.
func (c *Console) Exiting() {
	c.println("\nExiting.")
}
