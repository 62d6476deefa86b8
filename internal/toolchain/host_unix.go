//go:build linux || darwin || freebsd || netbsd || openbsd

package toolchain

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// HostWordSize returns the word size of the running kernel. A 32-bit
// boostpkg binary on a 64-bit kernel still reports 64.
func HostWordSize() int {
	var u unix.Utsname
	if err := unix.Uname(&u); err == nil {
		if n := machineWordSize(unix.ByteSliceToString(u.Machine[:])); n != 0 {
			return n
		}
	}
	return strconv.IntSize
}
