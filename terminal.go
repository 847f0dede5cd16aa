package main

import (
	"errors"
	"os"

	"golang.org/x/term"
)

var errNotTerminal = errors.New("stdout is not a terminal")

func terminalWidth() (chars int, err error) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return -1, errNotTerminal
	}
	if chars, _, err = term.GetSize(fd); err != nil {
		return -1, err
	}
	return chars, nil
}
