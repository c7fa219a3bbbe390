//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package diag

import "golang.org/x/sys/unix"

const ioctlGetTermios = unix.TIOCGETA
