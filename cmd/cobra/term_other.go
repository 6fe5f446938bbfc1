//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package main

import "os"

// Without termios we assume an interactive console for the standard streams.
func isTerminal(f *os.File) bool {
	return f == os.Stdin || f == os.Stdout || f == os.Stderr
}
