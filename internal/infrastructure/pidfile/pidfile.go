package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Acquire when a live process owns the file
type ErrAlreadyRunning struct {
	PID int
}

func (e *ErrAlreadyRunning) Error() string {
	return fmt.Sprintf("factory is already running (PID %d)", e.PID)
}

// ErrNotRunning is returned when no live process owns the file
var ErrNotRunning = errors.New("factory is not running")

// PIDFile keeps a single factory daemon per PID file path
type PIDFile struct {
	path string
}

func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string { return p.path }

// Acquire writes the current PID, replacing a stale or unreadable file
func (p *PIDFile) Acquire() error {
	if pid, err := p.Read(); err == nil {
		if isProcessRunning(pid) {
			return &ErrAlreadyRunning{PID: pid}
		}
	}
	_ = os.Remove(p.path)

	data := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns the PID stored in the file
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupt PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// Running returns the owning PID if that process is alive
func (p *PIDFile) Running() (int, error) {
	pid, err := p.Read()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, err
	}
	if !isProcessRunning(pid) {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Signal delivers sig to the running daemon
func (p *PIDFile) Signal(sig os.Signal) (int, error) {
	pid, err := p.Running()
	if err != nil {
		return 0, err
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, err
	}
	if err := process.Signal(sig); err != nil {
		return 0, fmt.Errorf("failed to signal PID %d: %w", pid, err)
	}
	return pid, nil
}

// Release removes the file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Signal 0 only probes; EPERM still means the process exists
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
