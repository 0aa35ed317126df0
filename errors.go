package soundpool

import (
	"errors"
)

// Sentinel errors
var (
	ErrInvalidSoundType = errors.New("invalid sound type")
	ErrUnknownSoundType = errors.New("no variants assigned to sound type")
	ErrPoolExhausted    = errors.New("no idle handle available")
	ErrMissingClip      = errors.New("variant has no clip")
	ErrEmptyCatalog     = errors.New("catalog has no playable variants")
	ErrClosed           = errors.New("manager is closed")
	ErrInvariant        = errors.New("handle state invariant violated")
)
