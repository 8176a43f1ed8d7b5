package block

import (
	"fmt"
	"strings"

	"github.com/ssargent/blockfile/pkg/codec"
)

// Mode selects the file organization used to pack payloads into blocks
type Mode int

const (
	// FixedBlocks packs whole fixed-width records; pairs with codec.Fixed
	FixedBlocks Mode = iota + 1
	// VariableContiguous packs whole variable records, never splitting one
	VariableContiguous
	// VariableSpanned splits variable records across blocks
	VariableSpanned
)

// Modes lists every packing mode in declaration order
var Modes = []Mode{FixedBlocks, VariableContiguous, VariableSpanned}

// String returns the name used in configuration files and flags
func (m Mode) String() string {
	switch m {
	case FixedBlocks:
		return "fixed"
	case VariableContiguous:
		return "contiguous"
	case VariableSpanned:
		return "spanned"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Encoding returns the record encoding a mode consumes
func (m Mode) Encoding() codec.EncodingMode {
	if m == FixedBlocks {
		return codec.Fixed
	}
	return codec.Variable
}

// Valid reports whether m is one of the declared modes
func (m Mode) Valid() bool {
	return m >= FixedBlocks && m <= VariableSpanned
}

// ParseMode parses a mode name as produced by String
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return FixedBlocks, nil
	case "contiguous":
		return VariableContiguous, nil
	case "spanned":
		return VariableSpanned, nil
	default:
		return 0, &ConfigError{Field: "layout", Value: s, Reason: "must be fixed, contiguous or spanned"}
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, &ConfigError{Field: "layout", Value: int(m), Reason: "unknown packing mode"}
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
