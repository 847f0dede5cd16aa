//go:build windows
// +build windows

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// terminalANSI toggles virtual terminal processing on the stdout console and
// reports whether it was enabled before the call.
func terminalANSI(enabled bool) (previous bool, err error) {
	handle := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return false, fmt.Errorf("unable to get console mode: %w", err)
	}

	const vt = windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	previous = mode&vt != 0
	if previous == enabled {
		return previous, nil
	}

	mode ^= vt
	if err := windows.SetConsoleMode(handle, mode); err != nil {
		return previous, fmt.Errorf("unable to set console mode: %w", err)
	}
	return previous, nil
}
