// File: experiment/completion.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package experiment

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/schedbench/api"
)

// completionLog is a FIFO of finished workers, in the order they were observed.
type completionLog struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newCompletionLog() *completionLog {
	return &completionLog{q: queue.New()}
}

func (c *completionLog) push(rep api.RuntimeReport) {
	c.mu.Lock()
	c.q.Add(rep.AppID)
	c.mu.Unlock()
}

// drain empties the log and returns app ids oldest first.
func (c *completionLog) drain() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, 0, c.q.Length())
	for c.q.Length() > 0 {
		out = append(out, c.q.Remove().(int))
	}
	return out
}
