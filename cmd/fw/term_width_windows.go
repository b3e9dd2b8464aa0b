//go:build windows

package main

import (
	"os"
	"strconv"
)

// detectTerminalWidth only knows $COLUMNS on windows.
func detectTerminalWidth() int {
	n, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
