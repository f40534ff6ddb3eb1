// Package testkit provides helpers for driving the host loop in tests.
package testkit

import (
	"testing"
	"time"

	"github.com/load28/effect-react/pkg/host"
)

// waitBudget bounds how long a test pumps the loop before failing.
const waitBudget = 2 * time.Second

// Pump flushes the loop until cond holds, failing the test when the budget
// runs out. Use it to wait for outcomes produced on background goroutines to
// land on the loop and settle.
func Pump(t *testing.T, loop *host.Loop, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitBudget)
	for {
		loop.Flush()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached within %v", waitBudget)
		}
		time.Sleep(time.Millisecond)
	}
}

// WaitDone waits for a done channel, then flushes the loop so the completion
// queued by the finished task is applied.
func WaitDone(t *testing.T, loop *host.Loop, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitBudget):
		t.Fatalf("task did not finish within %v", waitBudget)
	}
	loop.Flush()
}
