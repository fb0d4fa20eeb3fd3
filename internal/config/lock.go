package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

const (
	lockTimeout      = 5 * time.Second
	staleLockTimeout = 30 * time.Second
	lockPollInterval = 50 * time.Millisecond
)

// ErrLockTimeout is returned when the lock cannot be acquired within lockTimeout.
var ErrLockTimeout = errors.New("config: lock timeout")

// WithLock runs fn while holding <path>.lock, so concurrent mach processes
// do not interleave read-modify-write cycles on the same settings file.
func WithLock(path string, fn func() error) error {
	lockPath := path + ".lock"

	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return err
	}
	defer releaseLock(lockFile, lockPath)

	return fn()
}

func acquireLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(lockTimeout)

	for {
		if info, err := os.Stat(lockPath); err == nil && time.Since(info.ModTime()) > staleLockTimeout {
			_ = os.Remove(lockPath)
		}

		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			return f, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		time.Sleep(lockPollInterval)
	}
}

func releaseLock(f *os.File, lockPath string) {
	if f != nil {
		_ = f.Close()
	}
	_ = os.Remove(lockPath)
}
