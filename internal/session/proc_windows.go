//go:build windows

package session

import (
	"os/exec"
	"sync/atomic"
	"time"
)

const termGrace = time.Second

// setupCommand is a no-op on Windows; ConPTY handles console setup.
func setupCommand(_ *exec.Cmd) {}

// terminate kills the child. Windows has no process groups to signal
// and no graceful TERM, so the grace period only waits for the reaper.
func terminate(cmd *exec.Cmd, grace time.Duration, exited *atomic.Bool) {
	if cmd == nil || cmd.Process == nil || exited.Load() {
		return
	}
	_ = cmd.Process.Kill()
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if exited.Load() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
