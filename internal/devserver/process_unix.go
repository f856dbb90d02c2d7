//go:build !windows

package devserver

import (
	"io"
	"os/exec"
	"syscall"
	"time"
)

type processHandle struct {
	cmd    *exec.Cmd
	exited chan struct{}
}

func startProcess(argv []string, dir string, env []string, stdout, stderr io.Writer) (*processHandle, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	proc := &processHandle{cmd: cmd, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(proc.exited)
	}()
	return proc, nil
}

func (p *processHandle) pid() int {
	return p.cmd.Process.Pid
}

func stopProcess(proc *processHandle) {
	if proc == nil || proc.cmd == nil || proc.cmd.Process == nil {
		return
	}

	pgid, err := syscall.Getpgid(proc.cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		_ = proc.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-proc.exited:
		return
	case <-time.After(5 * time.Second):
		if pgid > 0 {
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		} else {
			_ = proc.cmd.Process.Kill()
		}
		<-proc.exited
	}
}
