//go:build unix

package supervisor

import (
	"errors"
	"os/exec"
	"syscall"
)

var errProcessGone = errors.New("process group no longer exists")

// setProcessGroup puts the child in a new process group so the daemon and any
// workers it forks can be signalled as a unit.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateGroup(pgid int) error { return signalGroup(pgid, syscall.SIGTERM) }

func killGroup(pgid int) error { return signalGroup(pgid, syscall.SIGKILL) }

func signalGroup(pgid int, sig syscall.Signal) error {
	if pgid <= 0 {
		return errProcessGone
	}
	if err := syscall.Kill(-pgid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return errProcessGone
		}
		return err
	}
	return nil
}
