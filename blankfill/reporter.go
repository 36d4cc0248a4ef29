package blankfill

import "sync/atomic"

const (
	OpIdentifyBlanks = "identify_blanks"
	OpFillValues     = "fill_values"
)

// CallReporter observes every completion request issued by a CompletionClient.
type CallReporter interface {
	RecordCall(op, model string)
}

// NoOpCallReporter discards call records.
type NoOpCallReporter struct{}

func (NoOpCallReporter) RecordCall(op, model string) {}

// CallCounter counts completion requests across all goroutines.
type CallCounter struct {
	count atomic.Int64
}

func (c *CallCounter) RecordCall(op, model string) {
	c.count.Add(1)
}

func (c *CallCounter) Count() int64 {
	return c.count.Load()
}
