package dsp

import "errors"

// ErrInvalidArgument indicates a precondition failure: an empty buffer, an empty
// frequency list, a non-positive sample rate or a frequency outside (0, Nyquist).
// Analysis never substitutes defaults for invalid input.
var ErrInvalidArgument = errors.New("invalid argument")
