package utils

import (
	"fmt"
	"strconv"
)

// StringToUint64 parses a decimal ID, returning 0 on failure.
func StringToUint64(str string) uint64 {
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseID parses a positive path/query identifier.
func ParseID(str string) (uint64, error) {
	id := StringToUint64(str)
	if id == 0 {
		return 0, fmt.Errorf("invalid id %q", str)
	}
	return id, nil
}
