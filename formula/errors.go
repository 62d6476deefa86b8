package formula

import "errors"

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrUnknownOption  = errors.New("unknown option")
	ErrInvalidValue   = errors.New("invalid value")
)
