//go:build unix

package session

import (
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// termGrace is how long a child gets to exit on SIGTERM before its
// group is killed outright.
const termGrace = time.Second

// setupCommand makes the child a session leader with the PTY as its
// controlling terminal. Ctty is the FD number in the child; xpty sets
// stdin to the PTY slave before start.
func setupCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0,
	}
}

// terminate shuts down the child's whole process group, TERM first
// and KILL after the grace period. exited flips when the reaper
// observes the exit, which cuts the poll short.
func terminate(cmd *exec.Cmd, grace time.Duration, exited *atomic.Bool) {
	if cmd == nil || cmd.Process == nil || exited.Load() {
		return
	}
	pid := cmd.Process.Pid
	_ = unix.Kill(-pid, unix.SIGTERM)
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if exited.Load() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	_ = unix.Kill(-pid, unix.SIGKILL)
}
