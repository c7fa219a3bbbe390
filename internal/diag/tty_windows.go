//go:build windows

package diag

import "golang.org/x/sys/windows"

// isTerminal reports whether fd refers to a console by checking that
// GetConsoleMode succeeds, mirroring the Unix termios check.
func isTerminal(fd uintptr) bool {
	var mode uint32
	err := windows.GetConsoleMode(windows.Handle(fd), &mode)
	return err == nil
}
