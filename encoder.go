package hxgrid

import (
	"errors"
	"fmt"

	"github.com/pthm/hxgrid/lib/encoding"
)

// Codec is an alias for encoding.Codec for convenience.
type Codec = encoding.Codec

// NewCodec creates a state codec with the given secret key.
func NewCodec(key []byte) (*Codec, error) {
	return encoding.NewCodec(key)
}

// wrapEncodingError maps encoding package errors onto hxgrid sentinels so
// callers only need to check one set.
func wrapEncodingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrInvalidFormat):
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	default:
		return err
	}
}
