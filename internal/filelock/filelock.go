// Package filelock provides advisory file locking so that several tasklist
// processes writing the same slot file do not interleave.
package filelock

import (
	"fmt"
	"os"
)

const lockFileMode = 0o600

// Suffix is appended to a guarded file's path to name its lock file.
const Suffix = ".lock"

// Lock acquires an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases
// the lock and must be called when the critical section is done.
//
// Other callers block until the lock is available.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

// Guard runs fn while holding the lock that protects target
// (target + Suffix). An unlock failure is reported only if fn succeeded.
func Guard(target string, fn func() error) (err error) {
	unlock, err := Lock(target + Suffix)
	if err != nil {
		return fmt.Errorf("locking %s: %w", target, err)
	}
	defer func() {
		if unlockErr := unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("unlocking %s: %w", target, unlockErr)
		}
	}()
	return fn()
}
