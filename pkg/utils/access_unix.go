//go:build unix

package utils

import "golang.org/x/sys/unix"

const (
	accessRead    = unix.R_OK
	accessExecute = unix.X_OK
)

// canAccess asks the kernel, like access(2), whether the real user may use path.
func canAccess(path string, mode uint32) bool {
	return unix.Access(path, mode) == nil
}
