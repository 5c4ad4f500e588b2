package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu   sync.Mutex
	crashHook func()
)

// SetCrashHook registers a function run before the stack trace is printed
// The demo uses it to restore the terminal; nil clears the hook
func SetCrashHook(fn func()) {
	crashMu.Lock()
	crashHook = fn
	crashMu.Unlock()
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	hook := crashHook
	crashMu.Unlock()
	if hook != nil {
		hook()
	}

	os.Stdout.Sync()
	os.Stderr.Sync()

	// \r\n keeps the output readable if the terminal is still in raw mode
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery
// Use this instead of the 'go' keyword for long-lived loops
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
