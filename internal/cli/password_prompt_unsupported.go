//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import "os"

// Plan 9, js and wasip1 have no echo control; the password is read as typed.
func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	return readLine(stdin)
}
