//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package diag

import "golang.org/x/sys/unix"

// isTerminal reports whether fd refers to a terminal by attempting to
// read its termios settings — the standard Unix isatty idiom, done via
// x/sys rather than a C cgo call.
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), ioctlGetTermios)
	return err == nil
}
