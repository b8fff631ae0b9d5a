//go:build windows

package shim

import "golang.org/x/sys/windows"

// dupDescriptor duplicates a file handle within the current process. The
// duplicate is created non-inheritable so it cannot leak into child
// processes; os.NewFile adopts the handle value directly.
func dupDescriptor(fd uintptr) (uintptr, error) {
	proc := windows.CurrentProcess()
	var dup windows.Handle
	err := windows.DuplicateHandle(proc, windows.Handle(fd), proc, &dup,
		0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return 0, err
	}
	return uintptr(dup), nil
}

func closeDescriptor(fd uintptr) {
	windows.CloseHandle(windows.Handle(fd))
}
