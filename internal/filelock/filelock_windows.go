//go:build windows

package filelock

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

const (
	lockfileExclusiveLock   = 0x00000002
	lockfileFailImmediately = 0x00000001
	lockRetryInterval       = time.Millisecond
)

// lockFile polls LockFileEx with LOCKFILE_FAIL_IMMEDIATELY; a blocking call
// would pin the OS thread and starve other goroutines.
func lockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	for {
		err := windows.LockFileEx(
			windows.Handle(f.Fd()),
			lockfileExclusiveLock|lockfileFailImmediately,
			0, // reserved
			1, // lock 1 byte
			0, // high word
			ol,
		)
		if err == nil {
			return nil
		}
		if !errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return err
		}
		time.Sleep(lockRetryInterval)
	}
}

func unlockFile(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, new(windows.Overlapped))
}
