//go:build !windows

package shim

import "golang.org/x/sys/unix"

// dupDescriptor duplicates fd so the shim owns a descriptor independent of
// the caller's. The duplicate is marked close-on-exec; it must not leak
// into child processes.
func dupDescriptor(fd uintptr) (uintptr, error) {
	nfd, err := unix.Dup(int(fd))
	if err != nil {
		return 0, err
	}
	unix.CloseOnExec(nfd)
	return uintptr(nfd), nil
}

func closeDescriptor(fd uintptr) {
	unix.Close(int(fd))
}
