package formula

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	CppStd string
	Layout string
)

const (
	CppStdDefault CppStd = "default"
	CppStd11      CppStd = "11"
	CppStd14      CppStd = "14"
	CppStd17      CppStd = "17"
)

const (
	LayoutVersioned Layout = "versioned"
	LayoutTagged    Layout = "tagged"
	LayoutSystem    Layout = "system"
)

var (
	knownCppStd = []CppStd{CppStdDefault, CppStd11, CppStd14, CppStd17}
	knownLayout = []Layout{LayoutVersioned, LayoutTagged, LayoutSystem}
)

const withoutPrefix = "without_"

// Options are the package options of the recipe.
//
// Shared, FPIC and Layout are nil/empty when the option was dropped
// (header-only packages, or fPIC under Visual Studio). A dropped option
// does not take part in flag derivation.
type Options struct {
	CppStd     CppStd
	HeaderOnly bool
	Shared     *bool
	FPIC       *bool
	Layout     Layout
	Without    Toggles
}

// DefaultOptions returns the recipe defaults: static, C++17, fPIC,
// system layout, every library included.
func DefaultOptions() Options {
	return Options{
		CppStd: CppStd17,
		Shared: ptr(false),
		FPIC:   ptr(true),
		Layout: LayoutSystem,
	}
}

// IsShared reports whether shared linking is requested. A dropped option
// counts as static.
func (o *Options) IsShared() bool {
	return o.Shared != nil && *o.Shared
}

// IsFPIC reports whether position independent code is requested.
func (o *Options) IsFPIC() bool {
	return o.FPIC != nil && *o.FPIC
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	if o.Shared != nil {
		o.Shared = ptr(*o.Shared)
	}
	if o.FPIC != nil {
		o.FPIC = ptr(*o.FPIC)
	}
	return o
}

// SetOption assigns an option by name, e.g. "shared" or "without_python".
// Unknown names are rejected.
func (o *Options) SetOption(name, value string) error {
	switch name {
	case "cppstd":
		return setEnum(&o.CppStd, knownCppStd, name, value)
	case "layout":
		return setEnum(&o.Layout, knownLayout, name, value)
	case "header_only":
		return setBool(&o.HeaderOnly, name, value)
	case "shared":
		var b bool
		if err := setBool(&b, name, value); err != nil {
			return err
		}
		o.Shared = &b
		return nil
	case "fPIC":
		var b bool
		if err := setBool(&b, name, value); err != nil {
			return err
		}
		o.FPIC = &b
		return nil
	}
	if libName, ok := strings.CutPrefix(name, withoutPrefix); ok {
		if lib, ok := ParseLibrary(libName); ok {
			var b bool
			if err := setBool(&b, name, value); err != nil {
				return err
			}
			o.Without.Set(lib, b)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOption, name)
}

// Validate checks the enumerated option values.
func (o *Options) Validate() error {
	if err := checkEnum(o.CppStd, knownCppStd, "cppstd"); err != nil {
		return err
	}
	if o.Layout != "" {
		return checkEnum(o.Layout, knownLayout, "layout")
	}
	return nil
}

// Values renders the options as name/value pairs, skipping dropped options.
// The order is stable: scalar options first, then one entry per library.
func (o *Options) Values() [][2]string {
	values := [][2]string{
		{"cppstd", string(o.CppStd)},
		{"header_only", formatBool(o.HeaderOnly)},
	}
	if o.Shared != nil {
		values = append(values, [2]string{"shared", formatBool(*o.Shared)})
	}
	if o.FPIC != nil {
		values = append(values, [2]string{"fPIC", formatBool(*o.FPIC)})
	}
	if o.Layout != "" {
		values = append(values, [2]string{"layout", string(o.Layout)})
	}
	for _, lib := range Libraries() {
		values = append(values, [2]string{withoutPrefix + lib.String(), formatBool(o.Without.Excluded(lib))})
	}
	return values
}

func setBool(dst *bool, name, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, name, value)
	}
	*dst = b
	return nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func ptr[T any](v T) *T {
	return &v
}
