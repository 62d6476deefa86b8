package formula

import "fmt"

// Library identifies one optional compiled Boost library.
type Library int

// Libraries are listed in link order (see b2 --show-libraries and
// FindBoost.cmake): a library appears before the libraries it depends on.
const (
	Math Library = iota
	Wave
	Container
	Exception
	Graph
	Iostreams
	Locale
	Log
	ProgramOptions
	Random
	Regex
	MPI
	Serialization
	Signals
	Coroutine
	Fiber
	Context
	Timer
	Thread
	Chrono
	DateTime
	Atomic
	Filesystem
	System
	GraphParallel
	Python
	Stacktrace
	Test
	TypeErasure

	numLibraries
)

var libraryNames = [numLibraries]string{
	Math:           "math",
	Wave:           "wave",
	Container:      "container",
	Exception:      "exception",
	Graph:          "graph",
	Iostreams:      "iostreams",
	Locale:         "locale",
	Log:            "log",
	ProgramOptions: "program_options",
	Random:         "random",
	Regex:          "regex",
	MPI:            "mpi",
	Serialization:  "serialization",
	Signals:        "signals",
	Coroutine:      "coroutine",
	Fiber:          "fiber",
	Context:        "context",
	Timer:          "timer",
	Thread:         "thread",
	Chrono:         "chrono",
	DateTime:       "date_time",
	Atomic:         "atomic",
	Filesystem:     "filesystem",
	System:         "system",
	GraphParallel:  "graph_parallel",
	Python:         "python",
	Stacktrace:     "stacktrace",
	Test:           "test",
	TypeErasure:    "type_erasure",
}

// String returns the b2 name of the library, e.g. "program_options".
func (l Library) String() string {
	if l < 0 || l >= numLibraries {
		return fmt.Sprintf("Library(%d)", int(l))
	}
	return libraryNames[l]
}

// Libraries returns every library in link order.
func Libraries() []Library {
	libs := make([]Library, numLibraries)
	for i := range libs {
		libs[i] = Library(i)
	}
	return libs
}

// ParseLibrary looks a library up by its b2 name.
func ParseLibrary(name string) (Library, bool) {
	for i, n := range libraryNames {
		if n == name {
			return Library(i), true
		}
	}
	return 0, false
}

// Toggles records, per library, whether it is excluded from the build.
// The zero value includes every library.
type Toggles [numLibraries]bool

// Excluded reports whether lib is excluded.
func (t Toggles) Excluded(lib Library) bool {
	return t[lib]
}

// Set excludes (true) or includes (false) lib.
func (t *Toggles) Set(lib Library, excluded bool) {
	t[lib] = excluded
}

// ExcludedLibraries returns the excluded libraries in link order.
func (t Toggles) ExcludedLibraries() []Library {
	var libs []Library
	for i, excluded := range t {
		if excluded {
			libs = append(libs, Library(i))
		}
	}
	return libs
}
