package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseUserID converts a textual user id into its numeric form.
// Non-numeric and non-positive values yield ErrValidation.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not a number", ErrValidation, raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	return id, nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for passwords read from the terminal.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
