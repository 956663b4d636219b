//go:build unix

package term

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// WatchResize delivers the terminal's [width, height] on every SIGWINCH.
// The channel is buffered so a resize arriving while the editor is mid
// repaint coalesces instead of blocking the signal handler.
func WatchResize(fd int) <-chan [2]int {
	out := make(chan [2]int, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	go func() {
		for range sig {
			w, h, err := term.GetSize(fd)
			if err != nil {
				continue
			}
			select {
			case out <- [2]int{w, h}:
			default:
			}
		}
	}()
	return out
}
