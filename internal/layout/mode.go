package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for an unrecognized name
var ErrUnknownMode = errors.New("unknown layout mode")

// Mode selects a layout engine
type Mode int

const (
	ModeDiscV Mode = iota
	ModeMapV
	ModeTreeV
)

// Modes lists every mode in menu order
var Modes = []Mode{ModeDiscV, ModeMapV, ModeTreeV}

func (m Mode) String() string {
	switch m {
	case ModeDiscV:
		return "disc"
	case ModeMapV:
		return "map"
	case ModeTreeV:
		return "tree"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Next returns the mode after m, wrapping around
func (m Mode) Next() Mode {
	return Modes[(int(m)+1)%len(Modes)]
}

// ParseMode accepts "disc", "map" or "tree", with or without a trailing "v"
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "v") {
	case "disc":
		return ModeDiscV, nil
	case "map":
		return ModeMapV, nil
	case "tree":
		return ModeTreeV, nil
	}
	return ModeDiscV, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if m < ModeDiscV || m > ModeTreeV {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
