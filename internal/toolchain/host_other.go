//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package toolchain

import (
	"os"
	"strconv"
)

// HostWordSize returns the word size of the host. On Windows a 32-bit
// process under WOW64 sees PROCESSOR_ARCHITEW6432.
func HostWordSize() int {
	if n := machineWordSize(os.Getenv("PROCESSOR_ARCHITEW6432")); n != 0 {
		return n
	}
	if n := machineWordSize(os.Getenv("PROCESSOR_ARCHITECTURE")); n != 0 {
		return n
	}
	return strconv.IntSize
}
