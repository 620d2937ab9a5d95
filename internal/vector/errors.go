package vector

import "errors"

// ErrInvalidArgument is returned when an operation has no defined result for
// its input, such as selecting from an empty candidate list.
//
// Numeric edge cases (division by zero, NaN, infinities) are not errors; they
// propagate through the float32 results.
var ErrInvalidArgument = errors.New("invalid argument")
