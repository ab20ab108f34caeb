package config

import "errors"

// ErrConfiguration indicates invalid codec parameters: a non-positive value, a
// frequency alphabet crossing the Nyquist limit, or a bad trigger set.
// It is only ever returned while building a Configuration, never by encode or
// decode operations.
var ErrConfiguration = errors.New("invalid configuration")
