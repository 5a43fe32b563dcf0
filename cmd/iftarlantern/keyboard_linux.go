//go:build linux

package main

import (
	"os"
	"syscall"
	"unsafe"
)

func ioctlTermios(fd int, req uintptr, state *syscall.Termios) bool {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(state)))
	return errno == 0
}

// listenForKeyboard puts the terminal in raw mode and feeds keys to c until
// a quit key, then restores the terminal and calls quit
func listenForKeyboard(c *console, quit func()) {
	fd := int(os.Stdin.Fd())
	var oldState syscall.Termios
	if !ioctlTermios(fd, syscall.TCGETS, &oldState) {
		// Not a terminal
		return
	}

	// Single keys without Enter, no echo, Ctrl+C as a byte. OPOST stays on so
	// \n still works.
	newState := oldState
	newState.Lflag &^= syscall.ICANON | syscall.ECHO | syscall.ISIG
	newState.Cc[syscall.VMIN] = 1
	newState.Cc[syscall.VTIME] = 0

	if !ioctlTermios(fd, syscall.TCSETS, &newState) {
		return
	}
	defer ioctlTermios(fd, syscall.TCSETS, &oldState)

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
			ioctlTermios(fd, syscall.TCSETS, &oldState)
			quit()
			return
		}
	}
}
