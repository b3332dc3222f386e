//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import (
	"os"

	"golang.org/x/sys/unix"
)

// disableEcho clears ECHO on the terminal behind file and returns the
// function that puts the saved attributes back.
func disableEcho(file *os.File) (func(), error) {
	if file == nil {
		return nil, errNoTerminal
	}

	fd := int(file.Fd())
	saved, err := unix.IoctlGetTermios(fd, ioctlGetAttr)
	if err != nil {
		return nil, err
	}
	hidden := *saved
	hidden.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, ioctlSetAttr, &hidden); err != nil {
		return nil, err
	}
	return func() { _ = unix.IoctlSetTermios(fd, ioctlSetAttr, saved) }, nil
}
