package toolchain

import "strings"

// machineWordSize maps a uname machine name to its word size, or 0 when
// the name is unknown.
func machineWordSize(machine string) int {
	m := strings.ToLower(machine)
	switch {
	case strings.HasSuffix(m, "64"), m == "s390x", strings.HasPrefix(m, "ppc64"):
		return 64
	case m == "i386", m == "i486", m == "i586", m == "i686", m == "x86",
		strings.HasPrefix(m, "armv"), m == "arm", m == "ppc", m == "mips":
		return 32
	}
	return 0
}
