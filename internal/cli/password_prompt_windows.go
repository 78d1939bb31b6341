//go:build windows

package cli

import (
	"os"

	"golang.org/x/sys/windows"
)

// readPasswordNoEcho disables console echo for the duration of one line.
func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	handle := windows.Handle(stdin.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return readLine(stdin)
	}

	if err := windows.SetConsoleMode(handle, mode&^windows.ENABLE_ECHO_INPUT); err != nil {
		return nil, err
	}
	defer func() {
		_ = windows.SetConsoleMode(handle, mode)
	}()

	return readLine(stdin)
}
