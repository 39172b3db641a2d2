package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidFile is a written PID file, optionally held under an flock
type pidFile struct {
	path   string
	file   *os.File
	locked bool
}

// managePIDFile writes the current PID to path. With lock set a second
// instance pointed at the same file fails to start. The returned func
// releases the lock and removes the file.
func managePIDFile(path string, lock bool) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		if lock {
			if err := checkStalePID(path); err != nil {
				return nil, err
			}
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open PID file: %w", err)
	}

	pf := &pidFile{path: path, file: file}

	if lock {
		if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			file.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, fmt.Errorf("cannot acquire lock: another instance is running")
			}
			return nil, fmt.Errorf("lock failed: %w", err)
		}
		pf.locked = true
	}

	if err := pf.write(os.Getpid()); err != nil {
		pf.release()
		return nil, err
	}

	return pf.release, nil
}

func (pf *pidFile) write(pid int) error {
	if _, err := fmt.Fprintf(pf.file, "%d\n", pid); err != nil {
		return fmt.Errorf("cannot write PID: %w", err)
	}
	if err := pf.file.Sync(); err != nil {
		return fmt.Errorf("cannot sync PID file: %w", err)
	}
	return nil
}

func (pf *pidFile) release() {
	if pf.locked {
		syscall.Flock(int(pf.file.Fd()), syscall.LOCK_UN)
	}
	pf.file.Close()
	os.Remove(pf.path)
}

// checkStalePID inspects an existing PID file. Reaching it at all means no
// lock holder exists, so every outcome is an error describing why the file
// was left behind.
func checkStalePID(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read existing PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("corrupted PID file (contains: %q)", string(data))
	}

	// Signal 0 probes for existence; FindProcess never fails on Unix
	proc, _ := os.FindProcess(pid)
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return fmt.Errorf("stale PID file: process %d is running but not holding lock", pid)
	case errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH):
		return fmt.Errorf("stale PID file found for defunct process %d", pid)
	default:
		return fmt.Errorf("process %d exists but cannot verify ownership: %v", pid, err)
	}
}
