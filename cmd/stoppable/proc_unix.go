//go:build unix

package main

import (
	"os/exec"
	"syscall"
)

// killProcessGroup runs cmd in its own process group and kills the whole
// group on cancellation, so children of a shell job stop with it.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
