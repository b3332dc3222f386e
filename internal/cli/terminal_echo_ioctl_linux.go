//go:build linux

package cli

import "golang.org/x/sys/unix"

const (
	ioctlGetAttr = unix.TCGETS
	ioctlSetAttr = unix.TCSETS
)
