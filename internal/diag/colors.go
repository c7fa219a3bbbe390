package diag

import (
	"os"
	"strings"
)

// Color is one of the small set of ANSI colors the CLI's diagnostic
// and result rendering uses.
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorGreen
	ColorYellow
)

var ansiCodes = map[Color]string{
	ColorReset:  "\033[0m",
	ColorRed:    "\033[31m",
	ColorGreen:  "\033[32m",
	ColorYellow: "\033[33m",
}

var colorsEnabled = detectColorSupport()

// detectColorSupport follows the teacher's precedence (explicit
// NO_COLOR opt-out, then TERM=dumb opt-out, then an actual TTY check)
// but replaces the hand-rolled os.ModeCharDevice stat with the
// platform syscall in tty_unix.go/tty_windows.go, per the domain
// stack's x/sys assignment.
func detectColorSupport() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	if isTerminal(os.Stdout.Fd()) {
		return true
	}
	if os.Getenv("COLORTERM") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	for _, known := range []string{"xterm", "screen", "vt100", "linux", "ansi"} {
		if strings.Contains(term, known) {
			return true
		}
	}
	return false
}

func EnableColors()  { colorsEnabled = true }
func DisableColors() { colorsEnabled = false }
func ColorsEnabled() bool { return colorsEnabled }
func SetColorsEnabled(enabled bool) { colorsEnabled = enabled }

func Colorize(s string, c Color) string {
	if !colorsEnabled {
		return s
	}
	code, ok := ansiCodes[c]
	if !ok {
		return s
	}
	return code + s + ansiCodes[ColorReset]
}

func Red(s string) string    { return Colorize(s, ColorRed) }
func Green(s string) string  { return Colorize(s, ColorGreen) }
func Yellow(s string) string { return Colorize(s, ColorYellow) }

// Strip removes every known ANSI code from s, for tests that want to
// assert on message content without caring whether coloring is on.
func Strip(s string) string {
	result := s
	for _, code := range ansiCodes {
		result = strings.ReplaceAll(result, code, "")
	}
	return result
}
