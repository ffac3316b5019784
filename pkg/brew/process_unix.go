//go:build unix

package brew

import (
	"os/exec"
	"syscall"
)

// setProcGroup starts the command in its own process group so that brew's
// ruby, curl and git children can be killed with it
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup kills every process in the command's group
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
