package selector

import (
	"sync"
	"sync/atomic"
)

// sequenceCursors holds one monotonically advancing cursor per operation.
type sequenceCursors struct {
	cursors sync.Map // operation id -> *atomic.Uint64
}

func newSequenceCursors() *sequenceCursors {
	return &sequenceCursors{}
}

// next returns the current cursor and advances it; concurrent callers never observe
// the same value.
func (c *sequenceCursors) next(operationID string) uint64 {
	v, ok := c.cursors.Load(operationID)
	if !ok {
		v, _ = c.cursors.LoadOrStore(operationID, new(atomic.Uint64))
	}
	return v.(*atomic.Uint64).Add(1) - 1
}

func (c *sequenceCursors) reset(operationID string) {
	c.cursors.Delete(operationID)
}
