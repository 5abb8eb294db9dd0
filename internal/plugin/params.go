// SPDX-License-Identifier: MIT
package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// ParameterSpec is one parsed "index,value" entry.
type ParameterSpec struct {
	Index int
	Value float32
}

// ParseParameterSpec parses "index,value" where index is a non-negative
// integer and value a float.
func ParseParameterSpec(spec string) (ParameterSpec, error) {
	idx, val, ok := strings.Cut(spec, ",")
	if !ok {
		return ParameterSpec{}, fmt.Errorf("%w: '%s' is not 'index,value'", ErrInvalidParameter, spec)
	}
	index, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil || index < 0 {
		return ParameterSpec{}, fmt.Errorf("%w: bad index in '%s'", ErrInvalidParameter, spec)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(val), 32)
	if err != nil {
		return ParameterSpec{}, fmt.Errorf("%w: bad value in '%s'", ErrInvalidParameter, spec)
	}
	return ParameterSpec{Index: index, Value: float32(value)}, nil
}
