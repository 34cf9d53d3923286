// Package progress renders a terminal progress bar for batch
// conversions.
package progress

import (
	"github.com/pterm/pterm"
)

// Bar tracks batch conversion progress. It renders only at the info
// log level so debug output and the bar do not interleave.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	enabled bool
}

// New creates a progress bar over total messages if logLevel is "info".
func New(total int, logLevel string) *Bar {
	bar := &Bar{enabled: logLevel == "info" && total > 0}
	if !bar.enabled {
		return bar
	}

	pb, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Converting messages").
		Start()
	bar.pb = pb
	return bar
}

// Increment advances the bar by one message.
func (b *Bar) Increment() {
	if !b.enabled || b.pb == nil {
		return
	}
	b.pb.Increment()
}

// Stop finishes the bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}
	_, _ = b.pb.Stop()
}
