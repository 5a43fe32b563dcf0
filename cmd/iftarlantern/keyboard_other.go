//go:build !linux && !darwin

package main

import (
	"os"
)

// listenForKeyboard reads keys from stdin. Without raw mode each key needs
// Enter.
func listenForKeyboard(c *console, quit func()) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if c.handleKey(buf[0]) {
			quit()
			return
		}
	}
}
