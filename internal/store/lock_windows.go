//go:build windows

package store

import "golang.org/x/sys/windows"

// A one-byte range at offset zero stands for the whole file.
const (
	lockReserved  = 0
	lockBytesLow  = 1
	lockBytesHigh = 0
)

// lockExclusive takes a non-blocking exclusive lock on fd.
func lockExclusive(fd uintptr) error {
	return windows.LockFileEx(
		windows.Handle(fd),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}

func unlock(fd uintptr) error {
	return windows.UnlockFileEx(windows.Handle(fd), lockReserved, lockBytesLow, lockBytesHigh, &windows.Overlapped{})
}
