package savefile

import (
	"fmt"
	"strings"
)

// Existing save files spell booleans with a leading capital.
const (
	literalTrue  = "True"
	literalFalse = "False"
)

func formatBool(v bool) string {
	if v {
		return literalTrue
	}
	return literalFalse
}

func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case literalTrue:
		return true, nil
	case literalFalse:
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
