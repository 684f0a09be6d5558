package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// animatedSpinner shows an animated spinner with message and dots
func animatedSpinner(out io.Writer, message string, interval time.Duration, done <-chan struct{}) {
	frameIndex := 0
	dotCount := 0

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fmt.Fprint(out, "\r\033[K") // Clear line
			return
		case <-ticker.C:
			fmt.Fprintf(out, "\r%s %s%s", spinnerFrames[frameIndex], message, strings.Repeat(".", dotCount))

			frameIndex = (frameIndex + 1) % len(spinnerFrames)
			if frameIndex == 0 {
				dotCount = (dotCount + 1) % 4 // 0, 1, 2, 3 dots
			}
		}
	}
}

// startSpinner runs the spinner until the returned func is called. The line
// is cleared before the func returns.
func startSpinner(out io.Writer, message string) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		animatedSpinner(out, message, 100*time.Millisecond, done)
	}()

	return func() {
		close(done)
		<-finished
	}
}
