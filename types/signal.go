package types

import "fmt"

// Signal is a strategy's instruction for one bar.
type Signal int8

const (
	SignalExit Signal = -1
	SignalFlat Signal = 0
	SignalLong Signal = 1
)

func (s Signal) Valid() bool {
	return s == SignalExit || s == SignalFlat || s == SignalLong
}

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "LONG"
	case SignalExit:
		return "EXIT"
	case SignalFlat:
		return "FLAT"
	default:
		return fmt.Sprintf("Signal(%d)", int8(s))
	}
}
