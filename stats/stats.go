// Package stats aggregates batch conversion counters.
package stats

import "sync"

// Summary totals one batch conversion run.
type Summary struct {
	Scanned   int
	Converted int
	Filtered  int
	Skipped   int
	Failed    int
	LastError error
}

// LogAttrs renders the summary as slog key/value pairs.
func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"converted", s.Converted,
		"filtered", s.Filtered,
		"skipped", s.Skipped,
		"failed", s.Failed,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector accumulates a Summary. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

// Scanned records one message seen in the archive.
func (c *Collector) Scanned() {
	c.mu.Lock()
	c.summary.Scanned++
	c.mu.Unlock()
}

// Converted records one message turned into a document.
func (c *Collector) Converted() {
	c.mu.Lock()
	c.summary.Converted++
	c.mu.Unlock()
}

// Filtered records one message rejected by the filter.
func (c *Collector) Filtered() {
	c.mu.Lock()
	c.summary.Filtered++
	c.mu.Unlock()
}

// Skipped records messages whose headers could not be read.
func (c *Collector) Skipped(n int) {
	c.mu.Lock()
	c.summary.Skipped += n
	c.mu.Unlock()
}

// Failed records one message that did not validate.
func (c *Collector) Failed(err error) {
	c.mu.Lock()
	c.summary.Failed++
	if err != nil {
		c.summary.LastError = err
	}
	c.mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}
