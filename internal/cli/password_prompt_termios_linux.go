//go:build linux

package cli

import "golang.org/x/sys/unix"

// Linux names the termios ioctls TCGETS/TCSETS.
const (
	termiosReadRequest  = unix.TCGETS
	termiosWriteRequest = unix.TCSETS
)
