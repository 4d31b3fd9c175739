//go:build !unix

package supervisor

import (
	"errors"
	"os"
	"os/exec"
)

var errProcessGone = errors.New("process no longer exists")

// Process groups are a unix notion; elsewhere only the daemon itself is signalled.
func setProcessGroup(cmd *exec.Cmd) {}

func terminateGroup(pid int) error { return killGroup(pid) }

func killGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return errProcessGone
	}
	if err := proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return errProcessGone
		}
		return err
	}
	return nil
}
