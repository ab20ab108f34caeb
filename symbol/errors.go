package symbol

import "errors"

var (
	// ErrInvalidMapping indicates a pitch pool and chord size that cannot carry data
	ErrInvalidMapping = errors.New("invalid chord mapping")

	// ErrInvalidValue indicates a word value wider than the mapping's bit width
	ErrInvalidValue = errors.New("word value out of range")

	// ErrInvalidChord indicates a set of pitches that no word value maps to
	ErrInvalidChord = errors.New("invalid chord")
)
