package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/crewplan/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// acquireDaemonLock writes "pid|addr" to the lockfile in dir. A lockfile left
// behind by a process that no longer runs, or that is not crewplan, is replaced.
func acquireDaemonLock(dir, addr string) (release func(), err error) {
	path := filepath.Join(dir, constants.DaemonLockfileName)
	if pid, running := runningDaemon(path); running {
		return nil, fmt.Errorf("crewplan daemon already running (pid %d, lockfile %s)", pid, path)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	pid := getpidFunc()
	content := fmt.Sprintf("%d|%s", pid, addr)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return func() {
		if owner, err := readLockfile(path); err == nil && owner == pid {
			_ = os.Remove(path)
		}
	}, nil
}

func runningDaemon(path string) (int, bool) {
	pid, err := readLockfile(path)
	if err != nil {
		return 0, false
	}
	if pid == getpidFunc() {
		return 0, false
	}
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return 0, false
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return 0, false
	}
	return pid, true
}

func readLockfile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return 0, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.New("invalid process ID in lockfile")
	}
	return pid, nil
}
