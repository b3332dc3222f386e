//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import "golang.org/x/sys/unix"

const (
	ioctlGetAttr = unix.TIOCGETA
	ioctlSetAttr = unix.TIOCSETA
)
